package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patric-chuzhbe/lmkadmin/internal/models"
)

func TestPrintBanner(t *testing.T) {
	tests := []struct {
		name        string
		account     models.TestAccount
		wantProfile bool
	}{
		{
			name: "profile created",
			account: models.TestAccount{
				UserID:         "6f1c2a9e-1d1b-4c55-9a0e-6c1f2b3a4d5e",
				Email:          "testuser1769076000@example.com",
				Password:       "Password123!",
				EmailVerified:  true,
				ProfileCreated: true,
			},
		},
		{
			name: "profile missing",
			account: models.TestAccount{
				Email:    "qa@example.com",
				Password: "Password123!",
			},
			wantProfile: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printBanner(&out, &tt.account)

			assert.Contains(t, out.String(), "TEST ACCOUNT READY!")
			assert.Contains(t, out.String(), "Email:    "+tt.account.Email)
			assert.Contains(t, out.String(), "Password: Password123!")
			assert.Equal(t, tt.wantProfile, bytes.Contains(out.Bytes(), []byte("Profile:  not created")))
		})
	}
}
