package services

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"secure-chat/codec"
	"secure-chat/domain"
	"secure-chat/errors"
	"secure-chat/moderation"
	"secure-chat/observability"
	"secure-chat/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type IMessageService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	List(ctx context.Context, cmd domain.ListMessagesCommand) ([]domain.DeliveredMessage, error)
}

// MessageService is the group ledger: bodies are encrypted before they reach
// the repository and decrypted only for current members.
type MessageService struct {
	groups           repositories.IGroupRepository
	messages         repositories.IMessageRepository
	codec            codec.ICodec
	censor           moderation.ICensor
	validate         *validator.Validate
	metrics          *observability.Metrics
	log              *slog.Logger
	maxMessageLength int
}

// NewMessageService accepts a nil censor when moderation is disabled.
func NewMessageService(
	groups repositories.IGroupRepository,
	messages repositories.IMessageRepository,
	codec codec.ICodec,
	censor moderation.ICensor,
	metrics *observability.Metrics,
	log *slog.Logger,
	maxMessageLength int,
) *MessageService {
	return &MessageService{
		groups:           groups,
		messages:         messages,
		codec:            codec,
		censor:           censor,
		validate:         validator.New(),
		metrics:          metrics,
		log:              log,
		maxMessageLength: maxMessageLength,
	}
}

func (s *MessageService) Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if err := s.validateText(cmd.Text); err != nil {
		return domain.Message{}, err
	}
	if err := s.requireMember(ctx, cmd.GroupID, cmd.SenderID); err != nil {
		return domain.Message{}, err
	}

	text := cmd.Text
	if s.censor != nil {
		var found []string
		text, found = s.censor.Censor(text)
		if len(found) > 0 {
			s.metrics.MessagesCensored.Inc()
			s.log.DebugContext(ctx, "Message censored", "group_id", cmd.GroupID, "user_id", cmd.SenderID, "matches", len(found))
		}
	}

	encrypted, err := s.codec.Encrypt(text)
	if err != nil {
		s.metrics.CryptoFailures.WithLabelValues("encrypt").Inc()
		s.log.ErrorContext(ctx, "Unable to encrypt message", "group_id", cmd.GroupID, "error", err)
		return domain.Message{}, fmt.Errorf("%w: encrypt: %v", errors.ErrCrypto, err)
	}

	message, err := s.messages.Create(ctx, cmd.GroupID, cmd.SenderID, encrypted)
	if err != nil {
		s.log.ErrorContext(ctx, "Unable to store message", "group_id", cmd.GroupID, "error", err)
		return domain.Message{}, err
	}
	s.metrics.MessagesSent.Inc()
	s.log.DebugContext(ctx, "Message stored", "group_id", cmd.GroupID, "message_id", message.ID)
	return message, nil
}

// List fails as a whole when one stored body cannot be decrypted.
func (s *MessageService) List(ctx context.Context, cmd domain.ListMessagesCommand) ([]domain.DeliveredMessage, error) {
	if err := s.requireMember(ctx, cmd.GroupID, cmd.CallerID); err != nil {
		return nil, err
	}
	stored, err := s.messages.ListByGroup(ctx, cmd.GroupID)
	if err != nil {
		return nil, err
	}

	delivered := make([]domain.DeliveredMessage, 0, len(stored))
	for _, message := range stored {
		text, err := s.codec.Decrypt(message.EncryptedText)
		if err != nil {
			s.metrics.CryptoFailures.WithLabelValues("decrypt").Inc()
			s.log.ErrorContext(ctx, "Unable to decrypt stored message",
				"group_id", cmd.GroupID, "message_id", message.ID, "error", err)
			return nil, fmt.Errorf("%w: message %s", errors.ErrCrypto, message.ID)
		}
		delivered = append(delivered, domain.DeliveredMessage{
			ID:        message.ID,
			SenderID:  message.SenderID,
			Text:      text,
			Timestamp: message.Timestamp,
		})
	}
	s.metrics.MessagesDelivered.Add(float64(len(delivered)))
	return delivered, nil
}

func (s *MessageService) validateText(text string) error {
	switch {
	case len(text) > s.maxMessageLength:
		return fmt.Errorf("%w: message text exceeds %d bytes", errors.ErrValidation, s.maxMessageLength)
	case !utf8.ValidString(text):
		return fmt.Errorf("%w: message text is not valid UTF-8", errors.ErrValidation)
	}
	return nil
}

func (s *MessageService) requireMember(ctx context.Context, groupID uuid.UUID, userID string) error {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.StateOf(userID) != domain.Member {
		return errors.ErrNotGroupMember
	}
	return nil
}
