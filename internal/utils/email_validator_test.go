package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmailAddress(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantErr  bool
		wantCode string
	}{
		{
			name:    "valid email",
			email:   "ana@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus tag",
			email:   "ana+gym@example.com",
			wantErr: false,
		},
		{
			name:     "missing at sign",
			email:    "ana.example.com",
			wantErr:  true,
			wantCode: "INVALID_FORMAT",
		},
		{
			name:     "empty string",
			email:    "",
			wantErr:  true,
			wantCode: "INVALID_FORMAT",
		},
		{
			name:     "display name form rejected",
			email:    "Ana Silva <ana@example.com>",
			wantErr:  true,
			wantCode: "INVALID_FORMAT",
		},
		{
			name:     "missing domain",
			email:    "ana@",
			wantErr:  true,
			wantCode: "INVALID_FORMAT",
		},
		{
			name:     "disposable domain",
			email:    "ana@mailinator.com",
			wantErr:  true,
			wantCode: "DISPOSABLE_EMAIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmailAddress(tt.email)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *EmailValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantCode, validationErr.Code)
		})
	}
}

func TestValidateEmailAddressWithConfig(t *testing.T) {
	cfg := &EmailValidationConfig{BlockDisposableEmails: false}

	err := ValidateEmailAddressWithConfig("ana@mailinator.com", cfg)
	assert.NoError(t, err, "disposable check disabled by config")
}
