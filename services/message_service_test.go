package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"secure-chat/domain"
	"secure-chat/errors"
	"secure-chat/mocks"
	"secure-chat/moderation"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type messageMocks struct {
	groups   *mocks.MockIGroupRepository
	messages *mocks.MockIMessageRepository
	codec    *mocks.MockICodec
}

func newMockedMessageService(t *testing.T, maxLength int) (*MessageService, messageMocks, domain.Group) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := messageMocks{
		groups:   mocks.NewMockIGroupRepository(ctrl),
		messages: mocks.NewMockIMessageRepository(ctrl),
		codec:    mocks.NewMockICodec(ctrl),
	}
	group := domain.NewGroup("climbers", domain.GroupOpen, 5, alice, time.Now().UTC())
	svc := NewMessageService(m.groups, m.messages, m.codec, nil, testMetrics(), testLogger(), maxLength)
	return svc, m, group
}

func TestMessageService_Send(t *testing.T) {
	t.Run("should encrypt before storing", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)
		stored := domain.Message{ID: ksuid.New(), GroupID: group.ID, SenderID: alice, EncryptedText: "cafe", Timestamp: time.Now()}

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.codec.EXPECT().Encrypt("hi").Return("cafe", nil)
		m.messages.EXPECT().Create(gomock.Any(), group.ID, alice, "cafe").Return(stored, nil)

		message, err := svc.Send(context.Background(), domain.SendMessageCommand{GroupID: group.ID, SenderID: alice, Text: "hi"})

		req.NoError(err)
		req.Equal(stored, message)
		req.Equal(1.0, testutil.ToFloat64(svc.metrics.MessagesSent))
	})

	t.Run("should refuse a sender who is not a member", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.codec.EXPECT().Encrypt(gomock.Any()).Times(0)
		m.messages.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Send(context.Background(), domain.SendMessageCommand{GroupID: group.ID, SenderID: bob, Text: "hi"})

		req.ErrorIs(err, errors.ErrNotGroupMember)
	})

	t.Run("should store nothing when encryption fails", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.codec.EXPECT().Encrypt("hi").Return("", errors.ErrInvalidKeyLength)
		m.messages.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Send(context.Background(), domain.SendMessageCommand{GroupID: group.ID, SenderID: alice, Text: "hi"})

		req.ErrorIs(err, errors.ErrCrypto)
		req.Equal("message could not be processed", errors.PublicMessage(err))
		req.Equal(1.0, testutil.ToFloat64(svc.metrics.CryptoFailures.WithLabelValues("encrypt")))
	})

	t.Run("should propagate a missing group", func(t *testing.T) {
		req := require.New(t)
		svc, m, _ := newMockedMessageService(t, 4096)
		groupID := uuid.New()

		m.groups.EXPECT().Get(gomock.Any(), groupID).Return(domain.Group{}, errors.ErrGroupNotFound)

		_, err := svc.Send(context.Background(), domain.SendMessageCommand{GroupID: groupID, SenderID: alice, Text: "hi"})

		req.ErrorIs(err, errors.ErrNotFound)
	})

	tests := []struct {
		name   string
		sender string
		text   string
	}{
		{"should reject an empty text", alice, ""},
		{"should reject a missing sender", "", "hi"},
		{"should reject a text over the limit", alice, strings.Repeat("a", 17)},
		{"should reject invalid UTF-8", alice, "caf\xe9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			svc, m, group := newMockedMessageService(t, 16)

			m.groups.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)

			_, err := svc.Send(context.Background(), domain.SendMessageCommand{GroupID: group.ID, SenderID: tt.sender, Text: tt.text})

			req.ErrorIs(err, errors.ErrValidation)
		})
	}

	t.Run("should censor before encrypting", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		groups := mocks.NewMockIGroupRepository(ctrl)
		messages := mocks.NewMockIMessageRepository(ctrl)
		cipher := mocks.NewMockICodec(ctrl)
		censor, err := moderation.NewModerator([]string{"darn"}, '*', testLogger())
		req.NoError(err)
		metrics := testMetrics()
		svc := NewMessageService(groups, messages, cipher, censor, metrics, testLogger(), 4096)
		group := domain.NewGroup("climbers", domain.GroupOpen, 5, alice, time.Now().UTC())

		groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		cipher.EXPECT().Encrypt("well ****").Return("beef", nil)
		messages.EXPECT().Create(gomock.Any(), group.ID, alice, "beef").Return(domain.Message{ID: ksuid.New()}, nil)

		_, err = svc.Send(context.Background(), domain.SendMessageCommand{GroupID: group.ID, SenderID: alice, Text: "well darn"})

		req.NoError(err)
		req.Equal(1.0, testutil.ToFloat64(metrics.MessagesCensored))
	})
}

func TestMessageService_List(t *testing.T) {
	t.Run("should decrypt every record in order", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)
		t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		stored := []domain.Message{
			{ID: ksuid.New(), GroupID: group.ID, SenderID: alice, EncryptedText: "c1", Timestamp: t0},
			{ID: ksuid.New(), GroupID: group.ID, SenderID: alice, EncryptedText: "c2", Timestamp: t0.Add(time.Second)},
		}

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.messages.EXPECT().ListByGroup(gomock.Any(), group.ID).Return(stored, nil)
		m.codec.EXPECT().Decrypt("c1").Return("first", nil)
		m.codec.EXPECT().Decrypt("c2").Return("second", nil)

		delivered, err := svc.List(context.Background(), domain.ListMessagesCommand{GroupID: group.ID, CallerID: alice})

		req.NoError(err)
		req.Equal([]domain.DeliveredMessage{
			{ID: stored[0].ID, SenderID: alice, Text: "first", Timestamp: t0},
			{ID: stored[1].ID, SenderID: alice, Text: "second", Timestamp: t0.Add(time.Second)},
		}, delivered)
		req.Equal(2.0, testutil.ToFloat64(svc.metrics.MessagesDelivered))
	})

	t.Run("should fail on a corrupted record", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)
		stored := []domain.Message{{ID: ksuid.New(), GroupID: group.ID, SenderID: alice, EncryptedText: "zz"}}

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.messages.EXPECT().ListByGroup(gomock.Any(), group.ID).Return(stored, nil)
		m.codec.EXPECT().Decrypt("zz").Return("", errors.ErrCrypto)

		delivered, err := svc.List(context.Background(), domain.ListMessagesCommand{GroupID: group.ID, CallerID: alice})

		req.ErrorIs(err, errors.ErrCrypto)
		req.Nil(delivered)
		req.Equal(1.0, testutil.ToFloat64(svc.metrics.CryptoFailures.WithLabelValues("decrypt")))
	})

	t.Run("should refuse a reader who is not a member", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.messages.EXPECT().ListByGroup(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.List(context.Background(), domain.ListMessagesCommand{GroupID: group.ID, CallerID: carol})

		req.ErrorIs(err, errors.ErrForbidden)
	})

	t.Run("should propagate a store failure", func(t *testing.T) {
		req := require.New(t)
		svc, m, group := newMockedMessageService(t, 4096)

		m.groups.EXPECT().Get(gomock.Any(), group.ID).Return(group, nil)
		m.messages.EXPECT().ListByGroup(gomock.Any(), group.ID).Return(nil, errors.ErrStoreUnavailable)

		_, err := svc.List(context.Background(), domain.ListMessagesCommand{GroupID: group.ID, CallerID: alice})

		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}
