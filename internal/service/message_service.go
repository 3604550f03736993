package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bd-chat/chatserver/internal/domain"
	"github.com/bd-chat/chatserver/internal/repository"
)

// MessageService encapsula la lógica para guardar y listar mensajes.
type MessageService struct {
	repo repository.MessageRepository
}

var (
	ErrMessageServiceNotConfigured = errors.New("message service not configured")
	ErrMessageInvalidInput         = errors.New("message invalid input")
)

func NewMessageService(repo repository.MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

// Save persiste el mensaje y devuelve el registro con el timestamp asignado
// por la base.
func (s *MessageService) Save(ctx context.Context, remetente, destinatario, mensagem string) (domain.Mensagem, error) {
	if s == nil || s.repo == nil {
		return domain.Mensagem{}, ErrMessageServiceNotConfigured
	}

	remetente = strings.TrimSpace(remetente)
	destinatario = strings.TrimSpace(destinatario)

	if remetente == "" || destinatario == "" || mensagem == "" {
		return domain.Mensagem{}, ErrMessageInvalidInput
	}

	return s.repo.Create(ctx, remetente, destinatario, mensagem)
}

// ListBetween devuelve el historial entre dos usuarios, ascendente por
// timestamp.
func (s *MessageService) ListBetween(ctx context.Context, a, b string) ([]domain.Mensagem, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMessageServiceNotConfigured
	}

	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return nil, ErrMessageInvalidInput
	}

	return s.repo.ListBetween(ctx, a, b)
}
