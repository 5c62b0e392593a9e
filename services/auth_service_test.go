package services

import (
	"testing"
	"time"

	"secure-chat/auth"
	"secure-chat/errors"
	"secure-chat/mocks"
	"secure-chat/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAuthService(t *testing.T) (*AuthService, *mocks.MockIUserRepository, *auth.TokenIssuer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIUserRepository(ctrl)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour, time.Now)
	return NewAuthService(repo, issuer, testLogger()), repo, issuer
}

func TestAuthService_Register(t *testing.T) {
	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		svc, repo, issuer := newTestAuthService(t)
		email := "test@example.com"

		// The repository must receive a hash, never the plain password.
		repo.EXPECT().
			CreateUser(email, gomock.Not("ComplexPass123!")).
			Return("user-uuid", nil).
			Times(1)

		session, err := svc.Register(email, "ComplexPass123!")

		req.NoError(err)
		req.Equal("user-uuid", session.UserID)
		claims, err := issuer.ValidateToken(session.Token)
		req.NoError(err)
		req.Equal("user-uuid", claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		svc, repo, _ := newTestAuthService(t)

		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register("test@example.com", "simplepassword")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(session.Token)
	})

	t.Run("should fail when the email is malformed", func(t *testing.T) {
		req := require.New(t)
		svc, repo, _ := newTestAuthService(t)

		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("not-an-email", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		svc, repo, _ := newTestAuthService(t)

		repo.EXPECT().
			CreateUser("duplicate@example.com", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate@example.com", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	password := "Secret123456!"
	hashedPassword, err := auth.HashPassword(password)
	require.NoError(t, err)
	storedUser := repositories.User{ID: "uuid-123", Email: "user@example.com", PasswordHash: hashedPassword}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		svc, repo, issuer := newTestAuthService(t)

		repo.EXPECT().GetUserByEmail(storedUser.Email).Return(storedUser, nil).Times(1)

		session, err := svc.Login(storedUser.Email, password)

		req.NoError(err)
		claims, err := issuer.ValidateToken(session.Token)
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
	})

	t.Run("should fail with wrong password", func(t *testing.T) {
		req := require.New(t)
		svc, repo, _ := newTestAuthService(t)

		repo.EXPECT().GetUserByEmail(storedUser.Email).Return(storedUser, nil).Times(1)

		_, err := svc.Login(storedUser.Email, "WrongPass123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should answer the same for an unknown email", func(t *testing.T) {
		req := require.New(t)
		svc, repo, _ := newTestAuthService(t)

		repo.EXPECT().
			GetUserByEmail("ghost@example.com").
			Return(repositories.User{}, errors.ErrNotFound).
			Times(1)

		_, err := svc.Login("ghost@example.com", password)

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should surface a store outage", func(t *testing.T) {
		req := require.New(t)
		svc, repo, _ := newTestAuthService(t)

		repo.EXPECT().
			GetUserByEmail(storedUser.Email).
			Return(repositories.User{}, errors.ErrStoreUnavailable).
			Times(1)

		_, err := svc.Login(storedUser.Email, password)

		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}
