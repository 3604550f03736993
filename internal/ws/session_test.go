package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/domain"
	"github.com/bd-chat/chatserver/internal/service"
)

type mockMessageRepo struct {
	mu        sync.Mutex
	saved     []domain.Mensagem
	createErr error
	listErr   error
	nextID    int64
}

func (m *mockMessageRepo) Create(_ context.Context, remetente, destinatario, mensagem string) (domain.Mensagem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return domain.Mensagem{}, m.createErr
	}
	m.nextID++
	msg := domain.Mensagem{
		ID:           m.nextID,
		Remetente:    remetente,
		Destinatario: destinatario,
		Mensagem:     mensagem,
		Timestamp:    time.Now().UTC(),
	}
	m.saved = append(m.saved, msg)
	return msg, nil
}

func (m *mockMessageRepo) ListBetween(_ context.Context, a, b string) ([]domain.Mensagem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Mensagem
	for _, msg := range m.saved {
		if (msg.Remetente == a && msg.Destinatario == b) || (msg.Remetente == b && msg.Destinatario == a) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func startSession(t *testing.T, hub *Hub, repo *mockMessageRepo) (*fakeConn, *Client) {
	t.Helper()
	conn := newFakeConn()
	client := NewClient("test", conn, 16)
	sess := NewSession(zap.NewNop(), hub, client, service.NewMessageService(repo))
	go sess.Run(context.Background())
	t.Cleanup(func() { _ = conn.Close() })
	return conn, client
}

func decodeHistory(t *testing.T, env Envelope) []domain.Mensagem {
	t.Helper()
	if env.Event != EventPreviousMessages {
		t.Fatalf("expected previousMessages, got %q", env.Event)
	}
	var history []domain.Mensagem
	if err := json.Unmarshal(env.Data, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	return history
}

func TestSessionJoinRepliesHistoryToJoinerOnly(t *testing.T) {
	hub := startHub(t)
	repo := &mockMessageRepo{}
	if _, err := repo.Create(context.Background(), "alice", "bob", "oi"); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	// Otro miembro del mismo canal no debe ver el replay.
	observer := newTestClient()
	hub.Join(observer, "alice")

	conn, client := startSession(t, hub, repo)
	conn.push(t, EventJoinChat, JoinChatData{Remetente: "alice", Destinatario: "bob"})

	history := decodeHistory(t, recvEnvelope(t, client))
	if len(history) != 1 || history[0].Mensagem != "oi" {
		t.Fatalf("expected seeded history, got %+v", history)
	}
	expectNoPayload(t, observer)
}

func TestSessionJoinEmptyHistory(t *testing.T) {
	hub := startHub(t)
	conn, client := startSession(t, hub, &mockMessageRepo{})

	conn.push(t, EventJoinChat, JoinChatData{Remetente: "alice", Destinatario: "bob"})

	history := decodeHistory(t, recvEnvelope(t, client))
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}

func TestSessionSendPersistsThenEmits(t *testing.T) {
	hub := startHub(t)
	repo := &mockMessageRepo{}

	bob := newTestClient()
	hub.Join(bob, "bob")

	conn, alice := startSession(t, hub, repo)
	conn.push(t, EventSendMessage, SendMessageData{Remetente: "alice", Destinatario: "bob", Mensagem: "hi"})

	env := recvEnvelope(t, bob)
	if env.Event != EventMessage {
		t.Fatalf("expected message event, got %q", env.Event)
	}
	var data MessageData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal message data: %v", err)
	}
	if data.Remetente != "alice" || data.Mensagem != "hi" {
		t.Fatalf("unexpected payload %+v", data)
	}
	if repo.savedCount() != 1 {
		t.Fatalf("expected message persisted, saved=%d", repo.savedCount())
	}
	// No hay eco hacia el emisor.
	expectNoPayload(t, alice)
}

func TestSessionSendStoreFailureSuppressesEmit(t *testing.T) {
	hub := startHub(t)
	repo := &mockMessageRepo{createErr: errors.New("insert failed")}

	bob := newTestClient()
	hub.Join(bob, "bob")

	conn, alice := startSession(t, hub, repo)
	conn.push(t, EventSendMessage, SendMessageData{Remetente: "alice", Destinatario: "bob", Mensagem: "hi"})

	// Un joinChat posterior sincroniza: al llegar su replay, el send fallido
	// ya fue procesado por completo.
	conn.push(t, EventJoinChat, JoinChatData{Remetente: "alice", Destinatario: "bob"})
	recvEnvelope(t, alice)

	expectNoPayload(t, bob)
	if repo.savedCount() != 0 {
		t.Fatalf("expected nothing persisted, saved=%d", repo.savedCount())
	}
}

func TestSessionRejoinSwitchesIdentity(t *testing.T) {
	hub := startHub(t)
	conn, client := startSession(t, hub, &mockMessageRepo{})

	conn.push(t, EventJoinChat, JoinChatData{Remetente: "a", Destinatario: "b"})
	recvEnvelope(t, client)

	conn.push(t, EventJoinChat, JoinChatData{Remetente: "c", Destinatario: "b"})
	recvEnvelope(t, client)

	hub.Emit("a", []byte(`{"event":"message","data":{"mensagem":"to a"}}`))
	hub.Emit("c", []byte(`{"event":"message","data":{"mensagem":"to c"}}`))

	env := recvEnvelope(t, client)
	var data MessageData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal message data: %v", err)
	}
	if data.Mensagem != "to c" {
		t.Fatalf("expected only the new channel to deliver, got %+v", data)
	}
	expectNoPayload(t, client)
}

func TestSessionDisconnectStopsDelivery(t *testing.T) {
	hub := startHub(t)
	conn, client := startSession(t, hub, &mockMessageRepo{})

	conn.push(t, EventJoinChat, JoinChatData{Remetente: "alice", Destinatario: "bob"})
	recvEnvelope(t, client)

	_ = conn.Close()
	select {
	case <-client.done:
	case <-time.After(time.Second):
		t.Fatalf("session did not close after disconnect")
	}

	hub.Emit("alice", []byte(`{"event":"message"}`))
	expectNoPayload(t, client)
}

func TestSessionIgnoresMalformedAndUnknownEvents(t *testing.T) {
	hub := startHub(t)
	conn, client := startSession(t, hub, &mockMessageRepo{})

	conn.frames <- []byte("not json")
	conn.push(t, "mistery", struct{}{})

	// La sesión sigue viva y procesando.
	conn.push(t, EventJoinChat, JoinChatData{Remetente: "alice", Destinatario: "bob"})
	recvEnvelope(t, client)
}

func TestChatEndToEnd(t *testing.T) {
	hub := startHub(t)
	repo := &mockMessageRepo{}

	aliceConn, _ := startSession(t, hub, repo)
	bobConn, bob := startSession(t, hub, repo)

	aliceConn.push(t, EventJoinChat, JoinChatData{Remetente: "alice", Destinatario: "bob"})
	bobConn.push(t, EventJoinChat, JoinChatData{Remetente: "bob", Destinatario: "alice"})
	recvEnvelope(t, bob)

	aliceConn.push(t, EventSendMessage, SendMessageData{Remetente: "alice", Destinatario: "bob", Mensagem: "hi"})

	env := recvEnvelope(t, bob)
	if env.Event != EventMessage {
		t.Fatalf("expected message event, got %q", env.Event)
	}
	var data MessageData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal message data: %v", err)
	}
	if data.Remetente != "alice" || data.Mensagem != "hi" {
		t.Fatalf("unexpected live payload %+v", data)
	}

	history, err := repo.ListBetween(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 || history[0].Mensagem != "hi" {
		t.Fatalf("expected persisted conversation, got %+v", history)
	}
}
