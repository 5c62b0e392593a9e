package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"secure-chat/cooldown"
	"secure-chat/domain"
	"secure-chat/errors"
	"secure-chat/observability"
	"secure-chat/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type IMembershipService interface {
	CreateGroup(ctx context.Context, cmd domain.CreateGroupCommand) (domain.Group, error)
	GetGroup(ctx context.Context, groupID uuid.UUID, callerID string) (domain.Group, error)
	Join(ctx context.Context, cmd domain.MembershipCommand) (domain.JoinOutcome, error)
	Leave(ctx context.Context, cmd domain.MembershipCommand) error
	Banish(ctx context.Context, cmd domain.MembershipCommand) error
	Approve(ctx context.Context, cmd domain.MembershipCommand) error
}

// MembershipService applies the membership transitions of a group.
// Every transition holds the group's lock for its whole read-modify-write,
// including the cooldown bookkeeping, so observers see it fully applied or not at all.
type MembershipService struct {
	groups            repositories.IGroupRepository
	cooldowns         cooldown.ITracker
	locks             *groupLocker
	validate          *validator.Validate
	metrics           *observability.Metrics
	log               *slog.Logger
	now               func() time.Time
	defaultMaxMembers int
}

func NewMembershipService(
	groups repositories.IGroupRepository,
	cooldowns cooldown.ITracker,
	metrics *observability.Metrics,
	log *slog.Logger,
	now func() time.Time,
	defaultMaxMembers int,
) *MembershipService {
	return &MembershipService{
		groups:            groups,
		cooldowns:         cooldowns,
		locks:             newGroupLocker(),
		validate:          validator.New(),
		metrics:           metrics,
		log:               log,
		now:               now,
		defaultMaxMembers: defaultMaxMembers,
	}
}

func (s *MembershipService) CreateGroup(ctx context.Context, cmd domain.CreateGroupCommand) (domain.Group, error) {
	if cmd.MaxMembers == 0 {
		cmd.MaxMembers = s.defaultMaxMembers
	}
	if err := s.validate.Struct(cmd); err != nil {
		s.observe(ctx, "create", uuid.Nil, cmd.OwnerID, err)
		return domain.Group{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	group := domain.NewGroup(cmd.Name, cmd.Type, cmd.MaxMembers, cmd.OwnerID, s.now().UTC())
	if err := s.groups.Create(ctx, group); err != nil {
		s.observe(ctx, "create", group.ID, cmd.OwnerID, err)
		return domain.Group{}, err
	}
	s.metrics.GroupsCreated.Inc()
	s.observe(ctx, "create", group.ID, cmd.OwnerID, nil)
	return group, nil
}

// GetGroup is reserved to members of the group.
func (s *MembershipService) GetGroup(ctx context.Context, groupID uuid.UUID, callerID string) (domain.Group, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.StateOf(callerID) != domain.Member {
		return domain.Group{}, errors.ErrNotGroupMember
	}
	return group, nil
}

func (s *MembershipService) Join(ctx context.Context, cmd domain.MembershipCommand) (domain.JoinOutcome, error) {
	var outcome domain.JoinOutcome
	err := s.transition(ctx, "join", cmd, func(g *domain.Group) error {
		onCooldown := false
		if g.Type == domain.GroupPrivate {
			var err error
			onCooldown, err = s.cooldowns.IsOnCooldown(ctx, g.ID, cmd.CallerID, s.now())
			if err != nil {
				return err
			}
		}
		var err error
		outcome, err = g.Join(cmd.CallerID, onCooldown)
		return err
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// Leave records the cooldown inside the group update, so a failed record
// leaves the caller a member and a failed commit leaves only a harmless entry.
func (s *MembershipService) Leave(ctx context.Context, cmd domain.MembershipCommand) error {
	leftAt := s.now()
	return s.transition(ctx, "leave", cmd, func(g *domain.Group) error {
		if err := g.Leave(cmd.CallerID); err != nil {
			return err
		}
		return s.cooldowns.RecordLeave(ctx, g.ID, cmd.CallerID, leftAt)
	})
}

func (s *MembershipService) Banish(ctx context.Context, cmd domain.MembershipCommand) error {
	return s.transition(ctx, "banish", cmd, func(g *domain.Group) error {
		return g.Banish(cmd.CallerID, cmd.TargetID)
	})
}

func (s *MembershipService) Approve(ctx context.Context, cmd domain.MembershipCommand) error {
	return s.transition(ctx, "approve", cmd, func(g *domain.Group) error {
		return g.Approve(cmd.CallerID, cmd.TargetID)
	})
}

// transition runs mutate on the stored group under the group lock.
func (s *MembershipService) transition(
	ctx context.Context,
	operation string,
	cmd domain.MembershipCommand,
	mutate func(*domain.Group) error,
) error {
	unlock, err := s.locks.lock(ctx, cmd.TargetGroup())
	if err != nil {
		return err
	}
	defer unlock()

	_, err = s.groups.Update(ctx, cmd.TargetGroup(), mutate)
	s.observe(ctx, operation, cmd.TargetGroup(), cmd.CallerID, err, "target_id", cmd.TargetID)
	return err
}

func (s *MembershipService) observe(ctx context.Context, operation string, groupID uuid.UUID, userID string, err error, attrs ...any) {
	outcome := outcomeOf(err)
	s.metrics.ObserveTransition(operation, outcome)
	attrs = append([]any{"operation", operation, "group_id", groupID, "user_id", userID}, attrs...)
	switch outcome {
	case "ok":
		s.log.DebugContext(ctx, "Membership transition applied", attrs...)
	case "store_unavailable", "error":
		s.log.ErrorContext(ctx, "Membership transition failed", append(attrs, "error", err)...)
	default:
		s.log.WarnContext(ctx, "Membership transition rejected", append(attrs, "reason", err.Error())...)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, errors.ErrValidation):
		return "invalid"
	case stderrors.Is(err, errors.ErrBadRequest):
		return "bad_request"
	case stderrors.Is(err, errors.ErrNotFound):
		return "not_found"
	case stderrors.Is(err, errors.ErrConflict):
		return "conflict"
	case stderrors.Is(err, errors.ErrForbidden):
		return "forbidden"
	case stderrors.Is(err, errors.ErrStoreUnavailable):
		return "store_unavailable"
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
