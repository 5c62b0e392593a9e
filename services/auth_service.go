package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"secure-chat/auth"
	"secure-chat/errors"
	"secure-chat/repositories"
)

type IAuthService interface {
	Login(email, password string) (Session, error)
	Register(email, password string) (Session, error)
}

type tokenGenerator interface {
	GenerateToken(userID string) (string, error)
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token  string
	UserID string
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         tokenGenerator
	log            *slog.Logger
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{userRepository: repo, tokens: tokens, log: log}
}

func (s *AuthService) Register(email, password string) (Session, error) {
	// Rules are checked before any expensive hashing.
	if err := auth.ValidateRegister(auth.RegisterRequest{Email: email, Password: password}); err != nil {
		return Session{}, err
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(email, hashedPassword)
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.GenerateToken(userID)
	if err != nil {
		s.log.Error("Unable to sign token", "user_id", userID, "error", err)
		return Session{}, errors.ErrTokenGeneration
	}
	s.log.Debug("User registered", "user_id", userID)
	return Session{Token: token, UserID: userID}, nil
}

// Login answers with the same error whether the email is unknown or the password wrong.
func (s *AuthService) Login(email, password string) (Session, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		if stderrors.Is(err, errors.ErrStoreUnavailable) {
			return Session{}, err
		}
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		s.log.Error("Unable to sign token", "user_id", user.ID, "error", err)
		return Session{}, errors.ErrTokenGeneration
	}
	return Session{Token: token, UserID: user.ID}, nil
}
