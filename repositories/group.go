//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"secure-chat/domain"
	"secure-chat/errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IGroupRepository interface {
	Create(ctx context.Context, group domain.Group) error
	Get(ctx context.Context, id uuid.UUID) (domain.Group, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Group) error) (domain.Group, error)
}

type GroupRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewGroupRepository(db *badger.DB, log *slog.Logger) *GroupRepository {
	return &GroupRepository{db: db, log: log}
}

type groupRecord struct {
	ID            string    `cbor:"id"`
	Name          string    `cbor:"name"`
	Type          string    `cbor:"type"`
	OwnerID       string    `cbor:"owner_id"`
	MaxMembers    int       `cbor:"max_members"`
	Members       []string  `cbor:"members"`
	JoinRequests  []string  `cbor:"join_requests"`
	BanishedUsers []string  `cbor:"banished_users"`
	CreatedAt     time.Time `cbor:"created_at"`
}

func groupKey(id uuid.UUID) []byte {
	return []byte("group:" + id.String())
}

// keyExists tells a missing key apart from a failed lookup.
func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (g *GroupRepository) Create(ctx context.Context, group domain.Group) error {
	data, err := marshal(fromGroup(group))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = g.db.Update(func(txn *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := groupKey(group.ID)
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: group %s already exists", errors.ErrConflict, group.ID)
		}
		return txn.Set(key, data)
	})
	return storeError(err)
}

func (g *GroupRepository) Get(ctx context.Context, id uuid.UUID) (domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return domain.Group{}, err
	}
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		group, err = readGroup(txn, id)
		return err
	})
	if err != nil {
		return domain.Group{}, storeError(err)
	}
	return group, nil
}

// Update runs a read-modify-write of one group inside a badger transaction.
// Concurrent writers on the same group make the commit fail with
// badger.ErrConflict; the whole cycle is then replayed on fresh data.
// Nothing is written when mutate or ctx fails.
func (g *GroupRepository) Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Group) error) (domain.Group, error) {
	attempt := 0
	operation := func() (domain.Group, error) {
		attempt++
		var updated domain.Group
		err := g.db.Update(func(txn *badger.Txn) error {
			group, err := readGroup(txn, id)
			if err != nil {
				return err
			}
			if err = mutate(&group); err != nil {
				return err
			}
			data, err := marshal(fromGroup(group))
			if err != nil {
				return fmt.Errorf("marshal failed: %w", err)
			}
			if err = ctx.Err(); err != nil {
				return err
			}
			updated = group
			return txn.Set(groupKey(id), data)
		})
		if stderrors.Is(err, badger.ErrConflict) {
			g.log.Debug("Group update conflicted, retrying", "group_id", id, "attempt", attempt)
			return domain.Group{}, err
		}
		if err != nil {
			return domain.Group{}, backoff.Permanent(storeError(err))
		}
		return updated, nil
	}
	group, err := backoff.RetryWithData(operation, backoff.WithContext(conflictBackOff(), ctx))
	if stderrors.Is(err, badger.ErrConflict) {
		return domain.Group{}, fmt.Errorf("%w: group %s is under contention", errors.ErrStoreUnavailable, id)
	}
	return group, err
}

func conflictBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return b
}

func readGroup(txn *badger.Txn, id uuid.UUID) (domain.Group, error) {
	item, err := txn.Get(groupKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	var group domain.Group
	err = item.Value(func(val []byte) error {
		group, err = DecodeGroup(val)
		return err
	})
	return group, err
}

// DecodeGroup turns a stored group value back into a Group.
func DecodeGroup(val []byte) (domain.Group, error) {
	var record groupRecord
	if err := unmarshal(val, &record); err != nil {
		return domain.Group{}, err
	}
	return toGroup(record)
}

// storeError keeps domain and context errors as they are and tags anything
// else coming from badger as a store failure.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case isDomainError(err):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		errors.ErrValidation, errors.ErrBadRequest, errors.ErrNotFound,
		errors.ErrConflict, errors.ErrForbidden, errors.ErrStoreUnavailable,
	} {
		if stderrors.Is(err, kind) {
			return true
		}
	}
	return false
}

func fromGroup(group domain.Group) groupRecord {
	return groupRecord{
		ID:            group.ID.String(),
		Name:          group.Name,
		Type:          string(group.Type),
		OwnerID:       group.OwnerID,
		MaxMembers:    group.MaxMembers,
		Members:       group.Members,
		JoinRequests:  group.JoinRequests,
		BanishedUsers: group.BanishedUsers,
		CreatedAt:     group.CreatedAt.UTC(),
	}
}

func toGroup(record groupRecord) (domain.Group, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Group{}, err
	}
	return domain.Group{
		ID:            id,
		Name:          record.Name,
		Type:          domain.GroupType(record.Type),
		OwnerID:       record.OwnerID,
		MaxMembers:    record.MaxMembers,
		Members:       record.Members,
		JoinRequests:  record.JoinRequests,
		BanishedUsers: record.BanishedUsers,
		CreatedAt:     record.CreatedAt.UTC(),
	}, nil
}
