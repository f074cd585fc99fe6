package roster

import "catchup/internal/hipchat"

// Kind tags which roster a target was found in.
type Kind string

const (
	KindRoom Kind = "room"
	KindUser Kind = "user"
)

// Target is the canonical identity behind an xmpp jid.
type Target struct {
	ID    string
	Kind  Kind
	Name  string
	Email string
}

// Resolve maps an xmpp jid to its roster entry. Rooms are scanned before
// users; the first exact match wins. A miss is the normal case for a
// conversation the caller no longer tracks, not an error.
func Resolve(rooms []hipchat.Room, users []hipchat.User, xmppID string) (Target, bool) {
	for _, r := range rooms {
		if r.XMPPJID == xmppID {
			return Target{ID: r.ID.String(), Kind: KindRoom, Name: r.Name}, true
		}
	}
	for _, u := range users {
		if u.XMPPJID == xmppID {
			return Target{ID: u.ID.String(), Kind: KindUser, Name: u.Name, Email: u.Email}, true
		}
	}
	return Target{}, false
}
