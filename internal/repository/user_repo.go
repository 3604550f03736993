package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bd-chat/chatserver/internal/domain"
)

// ErrDuplicateName indica que ya existe un usuario con ese nombre.
var ErrDuplicateName = errors.New("duplicate user name")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	List(ctx context.Context) ([]domain.Usuario, error)
	GetByName(ctx context.Context, nome string) (domain.Usuario, error)
	Create(ctx context.Context, user domain.Usuario) error
	Authenticate(ctx context.Context, nome, senha string) (domain.Usuario, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.Usuario, error) {
	const query = `
		SELECT nome, senha
		FROM usuario
		ORDER BY nome ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.Usuario
	for rows.Next() {
		var u domain.Usuario
		if err := rows.Scan(&u.Nome, &u.Senha); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) GetByName(ctx context.Context, nome string) (domain.Usuario, error) {
	const query = `
		SELECT nome, senha
		FROM usuario
		WHERE nome = $1
	`
	var u domain.Usuario
	err := r.pool.QueryRow(ctx, query, nome).Scan(&u.Nome, &u.Senha)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Usuario{}, err
	}
	return u, err
}

// Create hace check-then-insert: la verificación de nombre y el insert no
// son atómicos frente a registros concurrentes con el mismo nombre.
func (r *PgUserRepository) Create(ctx context.Context, user domain.Usuario) error {
	_, err := r.GetByName(ctx, user.Nome)
	if err == nil {
		return ErrDuplicateName
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	const insert = `
		INSERT INTO usuario (nome, senha)
		VALUES ($1, $2)
	`
	_, err = r.pool.Exec(ctx, insert, user.Nome, user.Senha)
	return err
}

// Authenticate busca la pareja exacta nombre/clave; la clave se compara tal
// cual fue almacenada.
func (r *PgUserRepository) Authenticate(ctx context.Context, nome, senha string) (domain.Usuario, error) {
	const query = `
		SELECT nome, senha
		FROM usuario
		WHERE nome = $1 AND senha = $2
	`
	var u domain.Usuario
	err := r.pool.QueryRow(ctx, query, nome, senha).Scan(&u.Nome, &u.Senha)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Usuario{}, err
	}
	return u, err
}
