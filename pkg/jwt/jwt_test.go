package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	Configure("test-secret", time.Hour)
	id := uuid.New()

	token, err := GenerateToken(id, "owner@shop.test", "Owner", "OWNER", []string{"sale:create"}, "v1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "OWNER", claims.RoleCode)
	assert.Equal(t, []string{"sale:create"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateRejectsTamperedAndEmpty(t *testing.T) {
	Configure("test-secret", time.Hour)
	token, err := GenerateToken(uuid.New(), "a@b.c", "A", "CASHIER", nil, "v1")
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	Configure("other-secret", 0)
	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
