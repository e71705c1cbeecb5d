package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Admin@123": true,
		"aB1!":      true,
		"aB1":       false,
		"admin@123": false,
		"ADMIN@123": false,
		"Admin@abc": false,
		"Admin1234": false,
		"Admin@12 ": false,
	}
	for pw, want := range cases {
		require.Equal(t, want, StrongPassword(pw), pw)
	}
}

type sample struct {
	Name     string `json:"user_name" validate:"notblank"`
	Password string `json:"password" validate:"strong_password"`
	Qty      int    `json:"product_quantity" validate:"min=1"`
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	errs := ValidateStruct(&sample{Name: "  ", Password: "weak", Qty: 0})
	require.Len(t, errs, 3)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.FailedField] = e.Tag
	}
	require.Equal(t, "notblank", fields["sample.user_name"])
	require.Equal(t, "strong_password", fields["sample.password"])
	require.Equal(t, "min", fields["sample.product_quantity"])
}

func TestValidateStructOK(t *testing.T) {
	require.Empty(t, ValidateStruct(&sample{Name: "bob", Password: "Secret#1", Qty: 2}))
}
