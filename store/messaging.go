package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
	"github.com/vendora/storefront-go/validate"
)

// Notifications caches the server-side inbox (distinct from the client-side
// toast channel).
type Notifications struct {
	*Resource[domain.Notification]
}

func NewNotifications(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Notifications {
	return &Notifications{New[domain.Notification](client, bus, log, Options{
		Name:           "notifications",
		Singular:       "notification",
		BasePath:       "/notification",
		OnUnauthorized: onUnauthorized,
	})}
}

// MarkRead flags one inbox entry as read, server first, cache second.
func (s *Notifications) MarkRead(ctx context.Context, token, id string) error {
	finish := s.begin("mark_read")

	err := s.client.Put(ctx, fmt.Sprintf("/notification/mark-read/%s", id), token, nil, nil)
	if err == nil {
		s.mu.Lock()
		for i := range s.items {
			if s.items[i].ID == id {
				s.items[i].Read = true
				break
			}
		}
		s.mu.Unlock()
	}

	finish(err, false)
	return err
}

// MarkAllRead flags the whole inbox as read.
func (s *Notifications) MarkAllRead(ctx context.Context, token string) error {
	finish := s.begin("mark_all_read")

	err := s.client.Put(ctx, "/notification/mark-all-read", token, nil, nil)
	if err == nil {
		s.mu.Lock()
		for i := range s.items {
			s.items[i].Read = true
		}
		s.mu.Unlock()
	}

	finish(err, false)
	return err
}

// UnreadCount reports how many cached inbox entries are unread.
func (s *Notifications) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.items {
		if !s.items[i].Read {
			n++
		}
	}
	return n
}

// Conversations caches buyer/seller message threads.
type Conversations struct {
	*Resource[domain.Conversation]
}

func NewConversations(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Conversations {
	return &Conversations{New[domain.Conversation](client, bus, log, Options{
		Name:           "conversations",
		Singular:       "conversation",
		BasePath:       "/conversation",
		OnUnauthorized: onUnauthorized,
	})}
}

// SendMessageInput is the payload for posting into a thread.
type SendMessageInput struct {
	Text     string `json:"text"      validate:"required"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// Send posts a message into a conversation and appends the server's copy to
// the cached thread. Sending is chat traffic, not a form submission, so no
// success toast is emitted.
func (s *Conversations) Send(ctx context.Context, token, conversationID string, input SendMessageInput) (domain.Message, error) {
	var zero domain.Message
	if err := validate.Struct(input); err != nil {
		return zero, err
	}

	finish := s.begin("send_message")

	var env itemEnvelope[domain.Message]
	err := s.client.Post(ctx, fmt.Sprintf("/conversation/send-message/%s", conversationID), token, input, &env)
	if err == nil {
		s.mu.Lock()
		for i := range s.items {
			if s.items[i].ID == conversationID {
				s.items[i].Messages = append(s.items[i].Messages, env.Data)
				s.items[i].LastMessage = env.Data.Text
				break
			}
		}
		if s.item != nil && s.item.ID == conversationID {
			s.item.Messages = append(s.item.Messages, env.Data)
			s.item.LastMessage = env.Data.Text
		}
		s.mu.Unlock()
	}

	finish(err, false)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}
