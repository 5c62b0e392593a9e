//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"secure-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
}

type UserRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewUserRepository(db *badger.DB, now func() time.Time) IUserRepository {
	return &UserRepository{db: db, now: now}
}

// User is the repository representation of an account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type userRecord struct {
	ID           string `cbor:"id"`
	Email        string `cbor:"email"`
	PasswordHash string `cbor:"password_hash"`
	CreatedAt    int64  `cbor:"created_at"`
}

func userKey(email string) []byte {
	return []byte("user:" + strings.ToLower(email))
}

// CreateUser persists the user keyed by its email and returns the new user id.
func (u UserRepository) CreateUser(email, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	data, err := marshal(userRecord{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    u.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(email)
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", storeError(err)
	}
	return newID, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshal(val, &record)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, fmt.Errorf("%w: user %s", errors.ErrNotFound, email)
	}
	if err != nil {
		return User{}, storeError(err)
	}
	return User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    time.Unix(record.CreatedAt, 0).UTC(),
	}, nil
}
