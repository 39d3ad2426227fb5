// Package matchstream delivers realtime match updates as a typed event
// stream over the backend's websocket endpoint.
package matchstream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventType discriminates match update frames.
type EventType string

const (
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventMatchStarted EventType = "match_started"
	EventMatchEnded   EventType = "match_ended"
	EventScoreUpdate  EventType = "score_update"
)

// PlayerEvent accompanies player_joined / player_left.
type PlayerEvent struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
}

// ScoreEvent accompanies score_update.
type ScoreEvent struct {
	PlayerID int64 `json:"player_id"`
	Score    int   `json:"score"`
}

// MatchEvent accompanies match_started / match_ended.
type MatchEvent struct {
	MatchID int64  `json:"match_id"`
	Status  string `json:"status"`
}

// Event is one decoded frame. Exactly one payload field matching Type is
// set; frames with an unrecognized type carry the raw body instead so
// callers can still observe them.
type Event struct {
	Type   EventType
	Player *PlayerEvent
	Score  *ScoreEvent
	Match  *MatchEvent
	Raw    json.RawMessage
}

// Stream is a live subscription to one match's updates. Events are consumed
// from Events(); Close unsubscribes and releases the connection.
type Stream struct {
	conn   *websocket.Conn
	events chan Event
	log    *zap.Logger

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// Dial subscribes to /match/{id}/ under the websocket base URL.
func Dial(ctx context.Context, wsBase string, matchID int64, logger *zap.Logger) (*Stream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	u := fmt.Sprintf("%s/match/%d/", wsBase, matchID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	s := &Stream{
		conn:   conn,
		events: make(chan Event, 16),
		log:    logger.With(zap.Int64("match", matchID)),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the subscription channel. It is closed when the connection
// ends; check Err afterwards.
func (s *Stream) Events() <-chan Event { return s.events }

// Err reports why the stream ended, nil for a clean Close.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close unsubscribes and closes the connection.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

func (s *Stream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.err = err
			}
			s.mu.Unlock()
			_ = s.Close()
			return
		}
		ev, ok := decode(data)
		if !ok {
			// Malformed frames are skipped, not fatal.
			s.log.Debug("dropping malformed frame", zap.ByteString("frame", data))
			continue
		}
		s.events <- ev
	}
}

// decode maps one frame onto a typed Event.
func decode(data []byte) (Event, bool) {
	var env struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		return Event{}, false
	}
	ev := Event{Type: env.Type}
	switch env.Type {
	case EventPlayerJoined, EventPlayerLeft:
		var p PlayerEvent
		if json.Unmarshal(data, &p) != nil {
			return Event{}, false
		}
		ev.Player = &p
	case EventScoreUpdate:
		var sc ScoreEvent
		if json.Unmarshal(data, &sc) != nil {
			return Event{}, false
		}
		ev.Score = &sc
	case EventMatchStarted, EventMatchEnded:
		var m MatchEvent
		if json.Unmarshal(data, &m) != nil {
			return Event{}, false
		}
		ev.Match = &m
	default:
		ev.Raw = append(json.RawMessage(nil), data...)
	}
	return ev, true
}
