package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/domain"
	"github.com/bd-chat/chatserver/internal/service"
)

// MessageHandler mantiene dependencias para endpoints de mensajes.
type MessageHandler struct {
	logger     *zap.Logger
	messageSvc *service.MessageService
}

func NewMessageHandler(logger *zap.Logger, messageSvc *service.MessageService) *MessageHandler {
	return &MessageHandler{
		logger:     logger,
		messageSvc: messageSvc,
	}
}

// ListMessages maneja GET /messages?remetente=&destinatario=.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	remetente := c.Query("remetente")
	destinatario := c.Query("destinatario")

	messages, err := h.messageSvc.ListBetween(c.Request.Context(), remetente, destinatario)
	if err != nil {
		if errors.Is(err, service.ErrMessageInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "remetente and destinatario are required"})
			return
		}
		h.logger.Error("list messages failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch messages"})
		return
	}
	if messages == nil {
		messages = []domain.Mensagem{}
	}
	c.JSON(http.StatusOK, messages)
}
