package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/domain"
	"github.com/bd-chat/chatserver/internal/repository"
)

// UserService coordina reglas de negocio para registro y login.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

var (
	ErrMissingFields      = errors.New("nome and senha are required")
	ErrDuplicateName      = errors.New("user name already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.Usuario, error) {
	if s == nil || s.users == nil {
		return nil, errors.New("user service not configured")
	}
	return s.users.List(ctx)
}

// Register crea una cuenta nueva. El chequeo de duplicados lo hace el
// repositorio antes del insert; no es atómico frente a registros
// concurrentes con el mismo nombre.
func (s *UserService) Register(ctx context.Context, nome, senha string) (domain.Usuario, error) {
	if s == nil || s.users == nil {
		return domain.Usuario{}, errors.New("user service not configured")
	}

	nome = strings.TrimSpace(nome)
	if nome == "" || senha == "" {
		return domain.Usuario{}, ErrMissingFields
	}

	user := domain.Usuario{Nome: nome, Senha: senha}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return domain.Usuario{}, ErrDuplicateName
		}
		return domain.Usuario{}, err
	}
	return user, nil
}

// Login valida las credenciales con una búsqueda exacta; la clave se compara
// tal cual fue enviada.
func (s *UserService) Login(ctx context.Context, nome, senha string) (domain.Usuario, error) {
	if s == nil || s.users == nil {
		return domain.Usuario{}, errors.New("user service not configured")
	}

	nome = strings.TrimSpace(nome)
	if nome == "" || senha == "" {
		return domain.Usuario{}, ErrMissingFields
	}

	user, err := s.users.Authenticate(ctx, nome, senha)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Usuario{}, ErrInvalidCredentials
		}
		return domain.Usuario{}, err
	}
	return user, nil
}
