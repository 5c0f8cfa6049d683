package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-for-testing")

func TestGenerateAndValidateAdminJWT(t *testing.T) {
	token, expiresAt, err := GenerateAdminJWT(testSecret, "ops@example.com", []Role{RoleViewer}, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateAdminJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, []string{"viewer"}, claims.Roles)
	assert.True(t, claims.HasPermission(RoleViewer))
	assert.False(t, claims.HasPermission(RoleAdmin))
}

func TestGenerateAdminJWT_Errors(t *testing.T) {
	_, _, err := GenerateAdminJWT(nil, "s", []Role{RoleAdmin}, time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateAdminJWT(testSecret, "", []Role{RoleAdmin}, time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateAdminJWT(testSecret, "s", nil, time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateAdminJWT(testSecret, "s", []Role{"root"}, time.Hour)
	assert.Error(t, err)
}

func TestValidateAdminJWT_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := GenerateAdminJWT(testSecret, "s", []Role{RoleAdmin}, time.Hour)
		require.NoError(t, err)
		_, err = ValidateAdminJWT(token, []byte("other"))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := GenerateAdminJWT(testSecret, "s", []Role{RoleAdmin}, -time.Minute)
		require.NoError(t, err)
		_, err = ValidateAdminJWT(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := AdminClaims{
			Roles: []string{"admin"},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "s",
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = ValidateAdminJWT(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := AdminClaims{Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateAdminJWT(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateAdminJWT("not.a.jwt", testSecret)
		assert.Error(t, err)
	})
}

func TestRoles(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleViewer, true},
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleAdmin, false},
	}
	for _, tt := range tests {
		if got := tt.role.HasPermission(tt.required); got != tt.want {
			t.Errorf("%s.HasPermission(%s) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}

	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}
