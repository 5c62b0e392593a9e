package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"secure-chat/domain"
	"secure-chat/errors"
)

type createGroupRequest struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	MaxMembers int    `json:"maxMembers"`
}

// groupView hides the request queue and ban list from everyone but the owner.
type groupView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	OwnerID       string    `json:"ownerId"`
	MaxMembers    int       `json:"maxMembers"`
	Members       []string  `json:"members"`
	JoinRequests  []string  `json:"joinRequests,omitempty"`
	BanishedUsers []string  `json:"banishedUsers,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type joinResponse struct {
	Status domain.JoinOutcome `json:"status"`
}

func toGroupView(group domain.Group, callerID string) groupView {
	view := groupView{
		ID:         group.ID.String(),
		Name:       group.Name,
		Type:       string(group.Type),
		OwnerID:    group.OwnerID,
		MaxMembers: group.MaxMembers,
		Members:    group.Members,
		CreatedAt:  group.CreatedAt,
	}
	if group.IsOwner(callerID) {
		view.JoinRequests = group.JoinRequests
		view.BanishedUsers = group.BanishedUsers
	}
	return view
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	callerID := GetUserID(r.Context())
	group, err := h.membership.CreateGroup(r.Context(), domain.CreateGroupCommand{
		Name:       req.Name,
		Type:       domain.GroupType(req.Type),
		MaxMembers: req.MaxMembers,
		OwnerID:    callerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupView(group, callerID))
}

func (h *Handler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	callerID := GetUserID(r.Context())
	group, err := h.membership.GetGroup(r.Context(), groupID, callerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupView(group, callerID))
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	cmd, err := membershipCommand(r, false)
	if err != nil {
		writeError(w, err)
		return
	}
	outcome, err := h.membership.Join(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{Status: outcome})
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, false, h.membership.Leave)
}

func (h *Handler) handleBanish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, true, h.membership.Banish)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, true, h.membership.Approve)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	withTarget bool,
	apply func(context.Context, domain.MembershipCommand) error,
) {
	cmd, err := membershipCommand(r, withTarget)
	if err != nil {
		writeError(w, err)
		return
	}
	if err = apply(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// membershipCommand builds the command from the path and, for owner actions,
// the userId query parameter.
func membershipCommand(r *http.Request, withTarget bool) (domain.MembershipCommand, error) {
	groupID, err := groupIDParam(r)
	if err != nil {
		return domain.MembershipCommand{}, err
	}
	cmd := domain.MembershipCommand{GroupID: groupID, CallerID: GetUserID(r.Context())}
	if withTarget {
		cmd.TargetID = r.URL.Query().Get("userId")
		if cmd.TargetID == "" {
			return domain.MembershipCommand{}, fmt.Errorf("%w: userId query parameter is required", errors.ErrValidation)
		}
	}
	return cmd, nil
}
