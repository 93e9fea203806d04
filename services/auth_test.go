package services

import (
	"testing"

	"skillpath-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	user, token, err := svc.Register("Alice", "Alice@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email) // normalized
	assert.NotEqual(t, "secret1", user.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	got, loginToken, err := svc.Login("alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, _, err := svc.Register("", "a@b.c", "secret1")
	require.Error(t, err)

	_, _, err = svc.Register("Alice", "", "secret1")
	require.Error(t, err)

	_, _, err = svc.Register("Alice", "a@b.c", "short")
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, _, err := svc.Register("Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register("Other", "ALICE@example.com", "secret2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, _, err := svc.Register("Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login("alice@example.com", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	_, _, err = svc.Login("nobody@example.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestEnsureDemoUserIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	svc.EnsureDemoUser()
	svc.EnsureDemoUser()

	var count int64
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "demo@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, _, err := svc.Login("demo@example.com", "demo123")
	require.NoError(t, err)
}
