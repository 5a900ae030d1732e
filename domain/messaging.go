package domain

import "time"

// Notification is a server-pushed inbox entry (distinct from the client-side
// toast side-channel in the notify package).
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single chat message inside a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is a buyer/seller message thread.
type Conversation struct {
	ID          string    `json:"id"`
	GroupTitle  string    `json:"group_title,omitempty"`
	MemberIDs   []string  `json:"member_ids"`
	LastMessage string    `json:"last_message,omitempty"`
	Messages    []Message `json:"messages,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (n Notification) EntityID() string { return n.ID }
func (c Conversation) EntityID() string { return c.ID }
func (m Message) EntityID() string      { return m.ID }
