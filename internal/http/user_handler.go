package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/domain"
	"github.com/bd-chat/chatserver/internal/service"
)

const sessionCookie = "session_token"

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger     *zap.Logger
	userServ   *service.UserService
	sessions   service.SessionStore
	sessionTTL time.Duration
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, sessions service.SessionStore, sessionTTL time.Duration) *UserHandler {
	return &UserHandler{
		logger:     logger,
		userServ:   userServ,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// ListUsers maneja GET /usuarios.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userServ.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	if users == nil {
		users = []domain.Usuario{}
	}
	c.JSON(http.StatusOK, users)
}

// Essencial maneja GET /essencial.
func (h *UserHandler) Essencial(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"titulo": "ola"})
}

// Cadastro maneja POST /cadastro. En éxito redirige al login del front.
func (h *UserHandler) Cadastro(c *gin.Context) {
	var req struct {
		Nome  string `json:"nome"`
		Senha string `json:"senha"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid cadastro request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "nome and senha are required"})
		return
	}

	_, err := h.userServ.Register(c.Request.Context(), req.Nome, req.Senha)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "nome and senha are required"})
		case errors.Is(err, service.ErrDuplicateName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user name already taken"})
		default:
			h.logger.Error("cadastro failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		}
		return
	}

	c.Redirect(http.StatusFound, "/login.html")
}

// Login maneja POST /login. En éxito crea una sesión del lado del servidor
// con un token opaco entregado como cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Nome  string `json:"nome"`
		Senha string `json:"senha"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "nome and senha are required"})
		return
	}

	user, err := h.userServ.Login(c.Request.Context(), req.Nome, req.Senha)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "nome and senha are required"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid name or password"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not login"})
		}
		return
	}

	token := uuid.NewString()
	if h.sessions != nil {
		if err := h.sessions.Put(c.Request.Context(), token, user.Nome); err != nil {
			h.logger.Error("session store failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not login"})
			return
		}
	}
	c.SetCookie(sessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "login ok",
		"redirect": "/main.html",
		"nome":     user.Nome,
	})
}

// Logout maneja POST /logout: borra la sesión referida por la cookie.
func (h *UserHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil && token != "" && h.sessions != nil {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			h.logger.Warn("session delete failed", zap.Error(err))
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
