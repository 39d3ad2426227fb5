package matchstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// serve runs a one-shot websocket endpoint that plays the given frames and
// then closes the connection cleanly.
func serve(t *testing.T, frames []string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/match/") {
			t.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		// Wait for the peer's close response before tearing down.
		conn.SetReadDeadline(deadline)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStream_TypedEvents(t *testing.T) {
	t.Parallel()

	base := serve(t, []string{
		`{"type":"player_joined","player_id":4,"username":"dave"}`,
		`{"type":"match_started","match_id":12,"status":"active"}`,
		`{"type":"score_update","player_id":4,"score":30}`,
		`this is not json`,
		`{"no_type_field":true}`,
		`{"type":"chat_message","text":"hi"}`,
		`{"type":"player_left","player_id":4,"username":"dave"}`,
		`{"type":"match_ended","match_id":12,"status":"finished"}`,
	})

	s, err := Dial(context.Background(), base, 12, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	var got []Event
	for ev := range s.Events() {
		got = append(got, ev)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("clean close should yield nil Err, got %v", err)
	}

	// Malformed frames are dropped; the unknown type survives as raw.
	if len(got) != 6 {
		t.Fatalf("got %d events, want 6: %+v", len(got), got)
	}
	if got[0].Type != EventPlayerJoined || got[0].Player == nil || got[0].Player.Username != "dave" {
		t.Fatalf("event 0 = %+v", got[0])
	}
	if got[1].Type != EventMatchStarted || got[1].Match == nil || got[1].Match.MatchID != 12 {
		t.Fatalf("event 1 = %+v", got[1])
	}
	if got[2].Type != EventScoreUpdate || got[2].Score == nil || got[2].Score.Score != 30 {
		t.Fatalf("event 2 = %+v", got[2])
	}
	if got[3].Type != EventType("chat_message") || got[3].Raw == nil {
		t.Fatalf("event 3 = %+v, want raw passthrough", got[3])
	}
	if got[4].Type != EventPlayerLeft {
		t.Fatalf("event 4 = %+v", got[4])
	}
	if got[5].Type != EventMatchEnded || got[5].Match.Status != "finished" {
		t.Fatalf("event 5 = %+v", got[5])
	}
}

func TestStream_CloseStopsDelivery(t *testing.T) {
	t.Parallel()

	base := serve(t, []string{
		`{"type":"player_joined","player_id":1,"username":"a"}`,
	})

	s, err := Dial(context.Background(), base, 7, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Double close is a no-op.
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// The event channel drains and closes after the connection drops.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("event channel never closed")
		}
	}
}

func TestStream_DialFailure(t *testing.T) {
	t.Parallel()

	if _, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", 1, nil); err == nil {
		t.Fatalf("dial to a dead port should fail")
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	if _, ok := decode([]byte(`{}`)); ok {
		t.Fatalf("frame without type decoded")
	}
	if _, ok := decode([]byte(`{"type":"player_joined","player_id":"not-a-number"}`)); ok {
		t.Fatalf("payload type mismatch decoded")
	}
	ev, ok := decode([]byte(`{"type":"score_update","player_id":2,"score":15}`))
	if !ok || ev.Score == nil || ev.Score.PlayerID != 2 {
		t.Fatalf("decode = %+v ok=%v", ev, ok)
	}
}
