package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bd-chat/chatserver/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
// MaxConns acota las operaciones concurrentes contra la base; las
// solicitudes por encima del límite esperan en cola dentro del pool.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// EnsureSchema crea las tablas usuario y mensagem si no existen, para que
// el servidor pueda arrancar contra una base vacía.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS usuario (
			nome  TEXT PRIMARY KEY,
			senha TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS mensagem (
			id           BIGSERIAL PRIMARY KEY,
			remetente    TEXT NOT NULL,
			destinatario TEXT NOT NULL,
			mensagem     TEXT NOT NULL,
			timestamp    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS mensagem_par_idx
			ON mensagem (remetente, destinatario, timestamp);
	`
	_, err := pool.Exec(ctx, schema)
	return err
}
