// Package domain contains core concepts of the group messaging system.
// This file defines Message records as they are persisted.
// Messages are immutable and only ever hold ciphertext.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Message represents an encrypted group message.
type Message struct {
	ID            ksuid.KSUID // unique identifier
	GroupID       uuid.UUID
	SenderID      string
	EncryptedText string
	Timestamp     time.Time
}

// DeliveredMessage is a message decrypted for a reader.
type DeliveredMessage struct {
	ID        ksuid.KSUID
	SenderID  string
	Text      string
	Timestamp time.Time
}
