package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/marketplace/internal/errors"
)

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email.Validate("buyer@example.com"))
	assert.NoError(t, Email.Validate("first.last+tag@sub.example.org"))
	assert.Error(t, Email.Validate("not-an-email"))
	assert.Error(t, Email.Validate("missing@tld"))
}

func TestUsername(t *testing.T) {
	assert.NoError(t, Username.Validate("jane.doe-42"))
	assert.Error(t, Username.Validate("jane doe"))
	assert.Error(t, Username.Validate("jane@doe"))
}

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Sup3rSecret", false},
		{"too short", "Ab1", true},
		{"missing uppercase", "sup3rsecret", true},
		{"missing lowercase", "SUP3RSECRET", true},
		{"missing number", "SuperSecret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}
