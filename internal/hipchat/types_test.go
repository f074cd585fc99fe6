package hipchat

import (
	"encoding/json"
	"testing"
)

func TestSenderShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"structured", `{"id":"m1","from":{"name":"Alice"}}`, "Alice"},
		{"raw string", `{"id":"m1","from":"HipChat"}`, "HipChat"},
		{"null", `{"id":"m1","from":null}`, ""},
		{"absent", `{"id":"m1"}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m Message
			if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
				t.Fatal(err)
			}
			if got := m.From.Display(); got != tc.want {
				t.Errorf("Display() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadStateTimestamp(t *testing.T) {
	var pg page[ReadStateEntry]
	payload := `{"items":[
		{"xmppJid":"1_a@conf","mid":"m1","timestamp":1541540883.123},
		{"xmppJid":"1_b@chat","mid":"m2"}
	]}`
	if err := json.Unmarshal([]byte(payload), &pg); err != nil {
		t.Fatal(err)
	}
	if len(pg.Items) != 2 {
		t.Fatalf("got %d entries, want 2", len(pg.Items))
	}
	if ts := pg.Items[0].UnixSeconds(); ts != 1541540883.123 {
		t.Errorf("UnixSeconds() = %v, want 1541540883.123", ts)
	}
	if ts := pg.Items[1].UnixSeconds(); ts != 0 {
		t.Errorf("UnixSeconds() with missing timestamp = %v, want 0", ts)
	}
}
