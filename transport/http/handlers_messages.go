package httptransport

import (
	"net/http"
	"time"

	"secure-chat/domain"

	"github.com/samber/lo"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sentMessageResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type messageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req sendMessageRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	message, err := h.messages.Send(r.Context(), domain.SendMessageCommand{
		GroupID:  groupID,
		SenderID: GetUserID(r.Context()),
		Text:     req.Text,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sentMessageResponse{ID: message.ID.String(), Timestamp: message.Timestamp})
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	delivered, err := h.messages.List(r.Context(), domain.ListMessagesCommand{
		GroupID:  groupID,
		CallerID: GetUserID(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(delivered, func(m domain.DeliveredMessage, _ int) messageView {
		return messageView{ID: m.ID.String(), SenderID: m.SenderID, Text: m.Text, Timestamp: m.Timestamp}
	}))
}
