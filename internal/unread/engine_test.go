package unread

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catchup/internal/hipchat"
	"go.uber.org/zap"
)

func testEngine(t *testing.T, mux *http.ServeMux) *Engine {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := hipchat.NewFactory(srv.URL, zap.NewNop()).Client("tok")
	return NewEngine(client, zap.NewNop())
}

// historyPage builds a items payload of n sequential messages m0..m(n-1).
func historyPage(n int) string {
	var msgs []string
	for i := 0; i < n; i++ {
		msgs = append(msgs, fmt.Sprintf(
			`{"id":"m%d","date":"2018-11-06T21:48:%02d+00:00","message":"body %d","from":{"name":"Alice"}}`, i, i, i))
	}
	return `{"items":[` + strings.Join(msgs, ",") + `]}`
}

func roomMux(t *testing.T, roomID, payload string) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/room/"+roomID+"/history/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	})
	return mux
}

func TestRoomTranscriptFromBoundary(t *testing.T) {
	e := testEngine(t, roomMux(t, "42", historyPage(5)))

	lines := e.Room(context.Background(), "42", "Engineering", "m2")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (boundary plus two newer)", len(lines))
	}
	if !strings.Contains(lines[0], "body 2") {
		t.Errorf("first line %q should be the boundary message", lines[0])
	}
	if !strings.Contains(lines[2], "body 4") {
		t.Errorf("last line %q should be the newest message", lines[2])
	}
}

func TestRoomBoundaryAbsent(t *testing.T) {
	// The marker scrolled out of the latest window: treated as nothing
	// unread, even though unread messages may exist beyond the window.
	e := testEngine(t, roomMux(t, "42", historyPage(5)))

	if lines := e.Room(context.Background(), "42", "Engineering", "gone"); len(lines) != 0 {
		t.Fatalf("got %d lines, want 0 for absent boundary", len(lines))
	}
}

func TestRoomBoundaryNewest(t *testing.T) {
	e := testEngine(t, roomMux(t, "42", historyPage(5)))

	lines := e.Room(context.Background(), "42", "Engineering", "m4")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (boundary only)", len(lines))
	}
	if !strings.Contains(lines[0], "body 4") {
		t.Errorf("line %q should be the boundary message", lines[0])
	}
}

func TestLineFormat(t *testing.T) {
	payload := `{"items":[{"id":"m0","date":"2018-11-06T21:48:03+00:00","message":"hello there","from":{"name":"Alice"}}]}`
	e := testEngine(t, roomMux(t, "42", payload))

	lines := e.Room(context.Background(), "42", "Engineering", "m0")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := "Alice: Nov 06, 2018 21:48:03\nhello there"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}

func TestSenderShapeVariance(t *testing.T) {
	payload := `{"items":[
		{"id":"m0","date":"2018-11-06T21:48:03+00:00","message":"joined","from":"HipChat"},
		{"id":"m1","date":"2018-11-06T21:48:04+00:00","message":"hi","from":{"name":"Alice"}},
		{"id":"m2","date":"bad date","message":"no sender"}
	]}`
	e := testEngine(t, roomMux(t, "42", payload))

	lines := e.Room(context.Background(), "42", "Engineering", "m0")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "HipChat: ") {
		t.Errorf("raw-string sender line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Alice: ") {
		t.Errorf("structured sender line = %q", lines[1])
	}
	// Missing sender and unparseable date render as empty, not a crash.
	if lines[2] != ": \nno sender" {
		t.Errorf("degenerate line = %q, want %q", lines[2], ": \nno sender")
	}
}

func TestUserHistoryFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/21/history/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	e := testEngine(t, mux)

	if lines := e.User(context.Background(), "21", "Alice", "m0"); len(lines) != 0 {
		t.Fatalf("got %d lines, want 0 on fetch failure", len(lines))
	}
}
