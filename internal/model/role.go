package model

// Role codes carried on users and in token claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
