//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"secure-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

type IMessageRepository interface {
	Create(ctx context.Context, groupID uuid.UUID, senderID, encryptedText string) (domain.Message, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Message, error)
}

const messageSequenceBandwidth = 100

type MessageRepository struct {
	db       *badger.DB
	log      *slog.Logger
	sequence *badger.Sequence
	now      func() time.Time

	mu       sync.Mutex
	lastSent time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, now func() time.Time) (*MessageRepository, error) {
	sequence, err := db.GetSequence([]byte("seq:msg"), messageSequenceBandwidth)
	if err != nil {
		return nil, storeError(err)
	}
	return &MessageRepository{db: db, log: log, sequence: sequence, now: now}, nil
}

type messageRecord struct {
	ID            string `cbor:"id"`
	GroupID       string `cbor:"group_id"`
	SenderID      string `cbor:"sender_id"`
	EncryptedText string `cbor:"encrypted_text"`
	At            int64  `cbor:"at"`
}

// Create assigns the message id and timestamp, then persists it.
// The key is formatted as "msg:{group_id}:{timestamp_padded}:{sequence_padded}":
//  1. 19-digit zero padding keeps lexicographical order chronological.
//  2. The sequence breaks timestamp ties in insertion order.
//
// Timestamps never go backwards within the process, even if the wall clock does.
func (m *MessageRepository) Create(ctx context.Context, groupID uuid.UUID, senderID, encryptedText string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	seq, err := m.sequence.Next()
	if err != nil {
		return domain.Message{}, storeError(err)
	}
	message := domain.Message{
		ID:            ksuid.New(),
		GroupID:       groupID,
		SenderID:      senderID,
		EncryptedText: encryptedText,
		Timestamp:     m.nextTimestamp(),
	}
	data, err := marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal failed: %w", err)
	}
	key := fmt.Sprintf("msg:%s:%019d:%020d", groupID, message.Timestamp.UnixNano(), seq)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return domain.Message{}, storeError(err)
	}
	return message, nil
}

func (m *MessageRepository) nextTimestamp() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	at := m.now().UTC()
	if at.Before(m.lastSent) {
		at = m.lastSent
	}
	m.lastSent = at
	return at
}

// ListByGroup returns every message of the group, oldest first,
// using a prefix scan over the ordered keys.
func (m *MessageRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []messageRecord
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", groupID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record messageRecord
			if err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	m.log.Debug("Messages loaded", "group_id", groupID, "count", len(records))

	messages := make([]domain.Message, 0, len(records))
	for _, record := range records {
		message, err := toMessage(record)
		if err != nil {
			return nil, storeError(err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Close returns the unused sequence range to badger.
func (m *MessageRepository) Close() error {
	return m.sequence.Release()
}

func fromMessage(message domain.Message) messageRecord {
	return messageRecord{
		ID:            message.ID.String(),
		GroupID:       message.GroupID.String(),
		SenderID:      message.SenderID,
		EncryptedText: message.EncryptedText,
		At:            message.Timestamp.UnixNano(),
	}
}

func toMessage(record messageRecord) (domain.Message, error) {
	id, err := ksuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	groupID, err := uuid.Parse(record.GroupID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:            id,
		GroupID:       groupID,
		SenderID:      record.SenderID,
		EncryptedText: record.EncryptedText,
		Timestamp:     time.Unix(0, record.At).UTC(),
	}, nil
}
