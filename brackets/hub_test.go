package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func waitRoomSize(t *testing.T, h *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.RoomSize(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("RoomSize(%q) = %d, want %d", room, h.RoomSize(room), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHubBroadcastsToRoomOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	room := RoomForTournament(3)
	inRoom := &Client{Hub: hub, Send: make(chan []byte, 1), Room: room}
	elsewhere := &Client{Hub: hub, Send: make(chan []byte, 1), Room: RoomForTournament(4)}
	if !hub.Join(inRoom) || !hub.Join(elsewhere) {
		t.Fatal("Join() on a running hub should succeed")
	}
	waitRoomSize(t, hub, room, 1)

	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventMatchUpdated, Payload: map[string]int{"match_id": 9}, RoomID: room})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("message is not JSON: %v", err)
		}
		if msg.Type != EventMatchUpdated || msg.RoomID != room {
			t.Errorf("message = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("client in the room got nothing")
	}
	if len(elsewhere.Send) != 0 {
		t.Error("client of another tournament received the message")
	}

	hub.leave(inRoom)
	waitRoomSize(t, hub, room, 0)
	if _, open := <-inRoom.Send; open {
		t.Error("Send should be closed after leaving")
	}
}

func TestHubDropsMessagesForFullBuffers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	room := RoomForTournament(1)
	slow := &Client{Hub: hub, Send: make(chan []byte, 1), Room: room}
	hub.Join(slow)
	waitRoomSize(t, hub, room, 1)

	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventRoundAdvanced})
	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventTournamentFinished})

	if got := len(slow.Send); got != 1 {
		t.Fatalf("buffered messages = %d, want 1", got)
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: RoomForTournament(2)}
	hub.Join(client)
	waitRoomSize(t, hub, client.Room, 1)

	cancel()
	<-stopped

	if hub.Join(&Client{Hub: hub, Send: make(chan []byte, 1), Room: client.Room}) {
		t.Error("Join() after shutdown should report false")
	}
	if _, open := <-client.Send; open {
		t.Error("clients should be closed on shutdown")
	}
}
