package domain

import (
	"github.com/google/uuid"
)

type Command interface {
	TargetGroup() uuid.UUID
}

type CreateGroupCommand struct {
	Name       string    `validate:"required,min=1,max=120"`
	Type       GroupType `validate:"required,oneof=open private"`
	MaxMembers int       `validate:"gte=2"`
	OwnerID    string    `validate:"required"`
}

// MembershipCommand carries the caller and, for owner actions, the targeted user.
type MembershipCommand struct {
	GroupID  uuid.UUID
	CallerID string
	TargetID string
}

func (m MembershipCommand) TargetGroup() uuid.UUID {
	return m.GroupID
}

type SendMessageCommand struct {
	GroupID  uuid.UUID
	SenderID string `validate:"required"`
	Text     string `validate:"required"`
}

func (s SendMessageCommand) TargetGroup() uuid.UUID {
	return s.GroupID
}

type ListMessagesCommand struct {
	GroupID  uuid.UUID
	CallerID string
}

func (l ListMessagesCommand) TargetGroup() uuid.UUID {
	return l.GroupID
}
