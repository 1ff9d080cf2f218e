package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
)

type fakeHasher struct {
	compareErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	return "hash(" + salt + ":" + password + ")", nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	if f.compareErr != nil {
		return f.compareErr
	}
	if hash != "hash("+salt+":"+password+")" {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct {
	issued []string
}

func (f *fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	f.issued = append(f.issued, userID)
	return "token-" + userID, nil
}

func newAuthFixture() (domain.AuthService, *fakeUserRepo, *fakeIssuer) {
	users := newFakeUserRepo()
	issuer := &fakeIssuer{}
	svc := NewAuthService(users, &fakeHasher{}, issuer, 24*time.Hour)
	return svc, users, issuer
}

func TestSignUp(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, err := svc.SignUp(context.Background(), "  Ada@Example.COM ", "correct horse", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEmpty(t, user.Salt)
}

func TestSignUp_invalid_email(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.SignUp(context.Background(), "not-an-email", "correct horse", "Ada", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSignUp_short_password(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.SignUp(context.Background(), "ada@example.com", "short", "Ada", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSignUp_duplicate_email(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.SignUp(context.Background(), "ada@example.com", "correct horse", "Ada", "")
	require.NoError(t, err)
	_, err = svc.SignUp(context.Background(), "ada@example.com", "correct horse", "Ada", "")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	created, err := svc.SignUp(context.Background(), "ada@example.com", "correct horse", "Ada", "")
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "token-"+created.ID, token)
	assert.Equal(t, created.ID, user.ID)
}

func TestLogin_wrong_password(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.SignUp(context.Background(), "ada@example.com", "correct horse", "Ada", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "ada@example.com", "wrong password")
	require.Error(t, err)
	assert.EqualError(t, err, "invalid credentials")
}

func TestLogin_unknown_user(t *testing.T) {
	svc, _, issuer := newAuthFixture()
	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever!")
	require.Error(t, err)
	// Unknown user and bad password read the same to the caller.
	assert.EqualError(t, err, "invalid credentials")
	assert.Empty(t, issuer.issued)
}
