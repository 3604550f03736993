package ws

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/domain"
	"github.com/bd-chat/chatserver/internal/service"
)

// Session es la máquina de estados por conexión: sin identidad al conectar,
// con identidad activa tras un joinChat, terminada al desconectar. Los
// eventos de una misma conexión se procesan en orden, de a uno; el replay de
// un joinChat siempre termina antes de que se atienda el siguiente evento.
type Session struct {
	logger   *zap.Logger
	hub      *Hub
	client   *Client
	messages *service.MessageService

	activeIdentity string
	peerIdentity   string
}

func NewSession(logger *zap.Logger, hub *Hub, client *Client, messages *service.MessageService) *Session {
	return &Session{
		logger:   logger,
		hub:      hub,
		client:   client,
		messages: messages,
	}
}

// Run lee eventos de la conexión hasta la desconexión. Bloquea; el caller
// debe haber arrancado el writePump del cliente.
func (s *Session) Run(ctx context.Context) {
	defer s.close()

	_ = s.client.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.client.conn.SetPongHandler(func(string) error {
		return s.client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.client.conn.ReadMessage()
		if err != nil {
			s.logger.Info("client disconnected",
				zap.String("client_id", s.client.id),
				zap.Error(err),
			)
			return
		}
		s.handle(ctx, raw)
	}
}

func (s *Session) handle(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.logger.Warn("invalid event frame",
			zap.String("client_id", s.client.id),
			zap.Error(err),
		)
		return
	}

	switch env.Event {
	case EventJoinChat:
		var data JoinChatData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.logger.Warn("invalid joinChat payload", zap.Error(err))
			return
		}
		s.handleJoin(ctx, data)
	case EventSendMessage:
		var data SendMessageData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.logger.Warn("invalid sendMessage payload", zap.Error(err))
			return
		}
		s.handleSend(ctx, data)
	default:
		s.logger.Warn("unknown event",
			zap.String("client_id", s.client.id),
			zap.String("event", env.Event),
		)
	}
}

// handleJoin suscribe la conexión al canal con el nombre del remetente y le
// reenvía el historial completo con el destinatario. El canal lleva el
// nombre del usuario, no del par: cualquiera que envíe a ese nombre alcanza
// esta conexión, sea cual sea el par declarado.
func (s *Session) handleJoin(ctx context.Context, data JoinChatData) {
	if data.Remetente == "" || data.Destinatario == "" {
		s.logger.Warn("joinChat missing identities",
			zap.String("client_id", s.client.id),
		)
		return
	}

	if s.activeIdentity != "" && s.activeIdentity != data.Remetente {
		s.hub.Leave(s.client, s.activeIdentity)
	}
	s.hub.Join(s.client, data.Remetente)

	s.activeIdentity = data.Remetente
	s.peerIdentity = data.Destinatario

	s.logger.Info("chat joined",
		zap.String("remetente", data.Remetente),
		zap.String("destinatario", data.Destinatario),
	)

	history, err := s.messages.ListBetween(ctx, data.Remetente, data.Destinatario)
	if err != nil {
		s.logger.Error("history fetch failed", zap.Error(err))
		return
	}
	if history == nil {
		history = []domain.Mensagem{}
	}

	payload, err := marshalEvent(EventPreviousMessages, history)
	if err != nil {
		s.logger.Error("marshal previousMessages failed", zap.Error(err))
		return
	}
	// El replay va solo a la conexión que se unió, nunca al canal.
	if !s.client.enqueue(payload) {
		s.logger.Warn("previousMessages dropped, send buffer full",
			zap.String("client_id", s.client.id),
		)
	}
}

// handleSend persiste el mensaje y, solo si el insert tuvo éxito, lo emite
// al canal del destinatario. Un fallo de persistencia se registra y suprime
// la entrega; no hay evento de error hacia el emisor.
func (s *Session) handleSend(ctx context.Context, data SendMessageData) {
	if _, err := s.messages.Save(ctx, data.Remetente, data.Destinatario, data.Mensagem); err != nil {
		s.logger.Error("message save failed",
			zap.String("remetente", data.Remetente),
			zap.String("destinatario", data.Destinatario),
			zap.Error(err),
		)
		return
	}

	payload, err := marshalEvent(EventMessage, MessageData{
		Remetente: data.Remetente,
		Mensagem:  data.Mensagem,
	})
	if err != nil {
		s.logger.Error("marshal message failed", zap.Error(err))
		return
	}
	s.hub.Emit(data.Destinatario, payload)
}

func (s *Session) close() {
	if s.activeIdentity != "" {
		s.hub.Leave(s.client, s.activeIdentity)
		s.activeIdentity = ""
		s.peerIdentity = ""
	}
	s.client.Close()
}
