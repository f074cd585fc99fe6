package unread

import (
	"context"
	"strings"

	"catchup/internal/dates"
	"catchup/internal/hipchat"
	"catchup/internal/roster"
	"go.uber.org/zap"
)

// SummaryItem is one conversation with unread messages. Messages is the
// newline-joined transcript.
type SummaryItem struct {
	Name     string `json:"name"`
	Messages string `json:"messages"`
}

// Summarize walks the read-state feed and collects the unread transcript
// of every tracked conversation, in feed order. Entries with no roster
// match are skipped. Conversations are checked one at a time; the remote
// API is the bottleneck, not this loop.
func (e *Engine) Summarize(ctx context.Context, rooms []hipchat.Room, users []hipchat.User) []SummaryItem {
	e.logger.Info("searching for unread messages")
	entries := e.client.ReadState(ctx)

	items := []SummaryItem{}
	checked := 0
	for _, entry := range entries {
		target, ok := roster.Resolve(rooms, users, entry.XMPPJID)
		if !ok {
			e.logger.Debug("no roster match for read-state entry",
				zap.String("xmpp_jid", entry.XMPPJID))
			continue
		}
		checked++
		e.logger.Debug("checking conversation",
			zap.String("name", target.Name),
			zap.String("kind", string(target.Kind)),
			zap.String("last_read_id", entry.MessageID),
			zap.String("last_read_at", dates.FromUnix(entry.UnixSeconds()).ISO()))

		var transcript []string
		switch target.Kind {
		case roster.KindRoom:
			transcript = e.Room(ctx, target.ID, target.Name, entry.MessageID)
		case roster.KindUser:
			transcript = e.User(ctx, target.ID, target.Name, entry.MessageID)
		}
		if len(transcript) > 0 {
			items = append(items, SummaryItem{
				Name:     target.Name,
				Messages: strings.Join(transcript, "\n"),
			})
		}
	}
	e.logger.Info("done checking conversations", zap.Int("checked", checked))
	return items
}
