// Package domain contains core concepts of the group messaging system.
// This file defines the Group entity and its membership transitions.
// Transitions mutate the group only when they succeed.
package domain

import (
	"fmt"
	"time"

	"secure-chat/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultMaxMembers = 100

type GroupType string

const (
	GroupOpen    GroupType = "open"
	GroupPrivate GroupType = "private"
)

func (t GroupType) Valid() bool {
	return t == GroupOpen || t == GroupPrivate
}

// MembershipState is the position of a user relative to a group.
type MembershipState int

const (
	NonMember MembershipState = iota
	PendingRequest
	Member
	Banished
)

func (s MembershipState) String() string {
	switch s {
	case PendingRequest:
		return "pending"
	case Member:
		return "member"
	case Banished:
		return "banished"
	default:
		return "non_member"
	}
}

// JoinOutcome tells whether a join added the user or queued a request.
type JoinOutcome string

const (
	Joined    JoinOutcome = "joined"
	Requested JoinOutcome = "requested"
)

// Group owns the membership sets. Members, JoinRequests and BanishedUsers
// are kept pairwise disjoint and the owner is always a member.
type Group struct {
	ID            uuid.UUID
	Name          string
	Type          GroupType
	OwnerID       string
	MaxMembers    int
	Members       []string
	JoinRequests  []string
	BanishedUsers []string
	CreatedAt     time.Time
}

func NewGroup(name string, groupType GroupType, maxMembers int, ownerID string, at time.Time) Group {
	return Group{
		ID:         uuid.New(),
		Name:       name,
		Type:       groupType,
		OwnerID:    ownerID,
		MaxMembers: maxMembers,
		Members:    []string{ownerID},
		CreatedAt:  at,
	}
}

func (g *Group) StateOf(userID string) MembershipState {
	switch {
	case lo.Contains(g.Members, userID):
		return Member
	case lo.Contains(g.JoinRequests, userID):
		return PendingRequest
	case lo.Contains(g.BanishedUsers, userID):
		return Banished
	default:
		return NonMember
	}
}

func (g *Group) IsOwner(userID string) bool {
	return g.OwnerID == userID
}

func (g *Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// Join lets userID into an open group or queues a request on a private one.
// cooldownActive is only consulted for private groups.
// A banished user re-requesting a private group moves to the request queue.
func (g *Group) Join(userID string, cooldownActive bool) (JoinOutcome, error) {
	state := g.StateOf(userID)
	if state == Member {
		return "", errors.ErrAlreadyMember
	}

	if g.Type == GroupOpen {
		if state == Banished {
			return "", errors.ErrBanished
		}
		if g.IsFull() {
			return "", errors.ErrGroupFull
		}
		g.Members = append(g.Members, userID)
		return Joined, nil
	}

	if cooldownActive {
		return "", errors.ErrCooldown
	}
	if state == PendingRequest {
		return Requested, nil
	}
	g.BanishedUsers = lo.Without(g.BanishedUsers, userID)
	g.JoinRequests = append(g.JoinRequests, userID)
	return Requested, nil
}

// Leave removes a non-owner member.
func (g *Group) Leave(userID string) error {
	if g.StateOf(userID) != Member {
		return errors.ErrNotMember
	}
	if g.IsOwner(userID) {
		return errors.ErrOwnerCannotLeave
	}
	g.Members = lo.Without(g.Members, userID)
	return nil
}

// Banish excludes targetID from the group, dropping any membership or pending request.
func (g *Group) Banish(callerID, targetID string) error {
	if !g.IsOwner(callerID) {
		return errors.ErrOwnerOnly
	}
	if g.IsOwner(targetID) {
		return errors.ErrCannotBanishOwner
	}
	g.Members = lo.Without(g.Members, targetID)
	g.JoinRequests = lo.Without(g.JoinRequests, targetID)
	if !lo.Contains(g.BanishedUsers, targetID) {
		g.BanishedUsers = append(g.BanishedUsers, targetID)
	}
	return nil
}

// Approve turns a pending request into a membership and clears any prior banishment.
func (g *Group) Approve(callerID, targetID string) error {
	if !g.IsOwner(callerID) {
		return errors.ErrOwnerOnly
	}
	if g.StateOf(targetID) != PendingRequest {
		return errors.ErrNoJoinRequest
	}
	if g.IsFull() {
		return errors.ErrGroupFull
	}
	g.JoinRequests = lo.Without(g.JoinRequests, targetID)
	g.BanishedUsers = lo.Without(g.BanishedUsers, targetID)
	g.Members = append(g.Members, targetID)
	return nil
}

// CheckInvariants reports the first broken membership invariant, if any.
func (g *Group) CheckInvariants() error {
	if !lo.Contains(g.Members, g.OwnerID) {
		return fmt.Errorf("owner %s is not a member of group %s", g.OwnerID, g.ID)
	}
	if len(g.Members) > g.MaxMembers {
		return fmt.Errorf("group %s has %d members for a capacity of %d", g.ID, len(g.Members), g.MaxMembers)
	}
	seen := make(map[string]MembershipState)
	for state, users := range map[MembershipState][]string{
		Member:         g.Members,
		PendingRequest: g.JoinRequests,
		Banished:       g.BanishedUsers,
	} {
		for _, u := range users {
			if prev, ok := seen[u]; ok {
				return fmt.Errorf("user %s is both %s and %s in group %s", u, prev, state, g.ID)
			}
			seen[u] = state
		}
	}
	return nil
}
