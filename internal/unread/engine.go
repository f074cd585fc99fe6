package unread

import (
	"context"
	"fmt"

	"catchup/internal/dates"
	"catchup/internal/hipchat"
	"go.uber.org/zap"
)

// Engine derives unread transcripts by scanning a conversation's latest
// history window against its last-read marker.
type Engine struct {
	client *hipchat.Client
	logger *zap.Logger
}

// NewEngine creates an engine bound to one caller's API client.
func NewEngine(client *hipchat.Client, logger *zap.Logger) *Engine {
	return &Engine{client: client, logger: logger}
}

// Room returns the formatted transcript of the last-read message and
// everything newer in the given room. A failed fetch yields an empty
// transcript.
func (e *Engine) Room(ctx context.Context, idOrName, name, lastReadID string) []string {
	e.logger.Debug("checking room", zap.String("name", name))
	msgs, ok := e.client.RoomHistoryLatest(ctx, idOrName)
	if !ok {
		return nil
	}
	return e.scan(msgs, lastReadID)
}

// User returns the formatted transcript of the last-read message and
// everything newer in the given direct conversation.
func (e *Engine) User(ctx context.Context, idOrEmail, name, lastReadID string) []string {
	e.logger.Debug("checking user chat", zap.String("name", name))
	msgs, ok := e.client.UserHistoryLatest(ctx, idOrEmail)
	if !ok {
		return nil
	}
	return e.scan(msgs, lastReadID)
}

// scan walks the window in wire order (oldest first). found flips on the
// first occurrence of the last-read id; every message after that is
// unread. The boundary message itself is kept as context for what
// follows. If the marker scrolled out of the window, nothing is emitted:
// this window is the only visibility the service has, and a marker beyond
// it is indistinguishable from all-read.
func (e *Engine) scan(msgs []hipchat.Message, lastReadID string) []string {
	var lines []string
	found := false
	newer := false
	for _, m := range msgs {
		if found {
			newer = true
		} else {
			found = m.ID == lastReadID
		}
		switch {
		case found && !newer:
			e.logger.Debug("read boundary",
				zap.String("id", m.ID),
				zap.String("by", m.From.Display()))
			lines = append(lines, formatLine(m))
		case newer:
			e.logger.Debug("unread",
				zap.String("id", m.ID),
				zap.String("by", m.From.Display()))
			lines = append(lines, formatLine(m))
		}
	}
	return lines
}

// formatLine renders one transcript line: sender and date on the first
// line, message body on the second.
func formatLine(m hipchat.Message) string {
	return fmt.Sprintf("%s: %s\n%s", m.From.Display(), dates.Parse(m.Date).Human(), m.Body)
}
