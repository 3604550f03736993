package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	userH *UserHandler,
	messageH *MessageHandler,
	wsHandler gin.HandlerFunc,
	staticDir string,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware())

	r.GET("/usuarios", userH.ListUsers)
	r.GET("/essencial", userH.Essencial)
	r.POST("/cadastro", userH.Cadastro)
	r.POST("/login", userH.Login)
	r.POST("/logout", userH.Logout)
	r.GET("/messages", messageH.ListMessages)

	r.GET("/ws", wsHandler)

	// Archivos estáticos del front en la raíz, como el servidor original.
	if staticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware replica la política permisiva del servicio original.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		h.Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
