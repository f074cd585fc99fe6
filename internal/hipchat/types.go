package hipchat

import (
	"bytes"
	"encoding/json"
)

// Room is an auto-join room roster entry.
type Room struct {
	ID      json.Number `json:"id"`
	XMPPJID string      `json:"xmpp_jid"`
	Name    string      `json:"name"`
}

// User is a direct-message peer roster entry.
type User struct {
	ID      json.Number `json:"id"`
	XMPPJID string      `json:"xmpp_jid"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
}

// ReadStateEntry is one per-conversation last-read marker from the
// readstate feed.
type ReadStateEntry struct {
	XMPPJID   string      `json:"xmppJid"`
	MessageID string      `json:"mid"`
	Timestamp json.Number `json:"timestamp"`
}

// UnixSeconds returns the marker timestamp as unix seconds, or 0 when the
// feed carried something unparseable.
func (e ReadStateEntry) UnixSeconds() float64 {
	ts, err := e.Timestamp.Float64()
	if err != nil {
		return 0
	}
	return ts
}

// Message is one entry of a conversation's latest history window.
type Message struct {
	ID   string  `json:"id"`
	Date string  `json:"date"`
	Body string  `json:"message"`
	From *Sender `json:"from"`
}

// Sender is the message author. The API sends either a participant object
// or a bare string label for system messages; both decode into Name.
type Sender struct {
	Name string
}

func (s *Sender) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &s.Name)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Name = obj.Name
	return nil
}

// Display returns the sender name for transcript lines; empty when the
// message carried no sender.
func (s *Sender) Display() string {
	if s == nil {
		return ""
	}
	return s.Name
}

// page is the items envelope shared by the list endpoints.
type page[T any] struct {
	Items []T `json:"items"`
}

// rateLimitBody is the 429 payload shape.
type rateLimitBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
