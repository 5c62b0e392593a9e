package repositories

import (
	"testing"
	"time"

	"secure-chat/errors"

	"github.com/stretchr/testify/require"
)

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t), time.Now)

	id, err := repository.CreateUser("Alice@Example.com", "$argon2id$hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("Alice@Example.com", user.Email)
	req.Equal("$argon2id$hash", user.PasswordHash)
}

func Test_Create_User_Twice(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t), time.Now)

	_, err := repository.CreateUser("alice@example.com", "hash")
	req.NoError(err)
	_, err = repository.CreateUser("alice@example.com", "other")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t), time.Now)

	_, err := repository.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, errors.ErrNotFound)
}
