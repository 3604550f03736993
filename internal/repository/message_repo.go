package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bd-chat/chatserver/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, remetente, destinatario, mensagem string) (domain.Mensagem, error)
	ListBetween(ctx context.Context, a, b string) ([]domain.Mensagem, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

// Create inserta el mensaje y devuelve el registro persistido; el timestamp
// lo asigna la base en el momento del insert.
func (r *PgMessageRepository) Create(ctx context.Context, remetente, destinatario, mensagem string) (domain.Mensagem, error) {
	const query = `
		INSERT INTO mensagem (remetente, destinatario, mensagem)
		VALUES ($1, $2, $3)
		RETURNING id, remetente, destinatario, mensagem, timestamp
	`

	var msg domain.Mensagem
	err := r.pool.QueryRow(ctx, query, remetente, destinatario, mensagem).Scan(
		&msg.ID,
		&msg.Remetente,
		&msg.Destinatario,
		&msg.Mensagem,
		&msg.Timestamp,
	)
	if err != nil {
		return domain.Mensagem{}, err
	}
	return msg, nil
}

// ListBetween devuelve la conversación entre a y b en ambos sentidos,
// ordenada ascendente por timestamp. Es simétrica: (a,b) == (b,a).
func (r *PgMessageRepository) ListBetween(ctx context.Context, a, b string) ([]domain.Mensagem, error) {
	const query = `
		SELECT id, remetente, destinatario, mensagem, timestamp
		FROM mensagem
		WHERE (remetente = $1 AND destinatario = $2)
		   OR (remetente = $2 AND destinatario = $1)
		ORDER BY timestamp ASC
	`

	rows, err := r.pool.Query(ctx, query, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Mensagem
	for rows.Next() {
		var msg domain.Mensagem
		err = rows.Scan(
			&msg.ID,
			&msg.Remetente,
			&msg.Destinatario,
			&msg.Mensagem,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
