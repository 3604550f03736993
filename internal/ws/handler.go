package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/service"
)

// Origen abierto, igual que el CORS del resto de la API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler hace el upgrade a websocket y atiende la sesión hasta la
// desconexión.
func Handler(logger *zap.Logger, hub *Hub, messages *service.MessageService, sendBuffer int) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(uuid.NewString(), conn, sendBuffer)
		logger.Info("client connected", zap.String("client_id", client.id))

		go client.writePump()

		// Las operaciones de la sesión no se atan al contexto del request:
		// las operaciones en vuelo al desconectar deben completarse y su
		// resultado descartarse en el router si la membresía ya no existe.
		NewSession(logger, hub, client, messages).Run(context.Background())
	}
}
