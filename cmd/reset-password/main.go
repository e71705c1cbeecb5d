package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go-inventory-orders/internal/repository"
	"go-inventory-orders/internal/service"
	"go-inventory-orders/pkg/config"
	"go-inventory-orders/pkg/database"
	"go-inventory-orders/pkg/jwt"
	"go-inventory-orders/pkg/logger"

	"go.uber.org/zap"
)

// reset-password sets a new password for an account and revokes its sessions.
func main() {
	cfg := config.Load()
	userName := flag.String("user", cfg.AdminName, "user name to reset")
	password := flag.String("password", cfg.AdminPassword, "new password")
	flag.Parse()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	// 1. Setup Database
	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	defer database.Close(db)

	// 2. Reset through the auth service so the password policy applies
	auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL), zlog)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := auth.ResetPassword(ctx, *userName, *password); err != nil {
		zlog.Fatal("reset password", zap.String("user_name", *userName), zap.Error(err))
	}

	zlog.Info("password reset, existing sessions revoked", zap.String("user_name", *userName))
}
