package db

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	Pool Pool
}

// queryer покрывает и пул, и транзакцию: запросные функции не знают,
// внутри транзакции они работают или нет.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool — методы pgxpool.Pool, которыми пользуется хранилище.
type Pool interface {
	queryer
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

func New() (*Database, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	db := &Database{Pool: pool}
	if err := db.initSchema(); err != nil {
		return nil, err
	}

	return db, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS cities (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS images (
		id UUID PRIMARY KEY,
		photo TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		login TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		sex TEXT NOT NULL,
		about_me TEXT NOT NULL DEFAULT '',
		score INT NOT NULL DEFAULT 0,
		level INT GENERATED ALWAYS AS (score / 50 + 1) STORED,
		city_id UUID NOT NULL REFERENCES cities(id),
		avatar_id UUID REFERENCES images(id)
	);

	CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY,
		address TEXT NOT NULL,
		instructions TEXT NOT NULL DEFAULT '',
		city_id UUID NOT NULL REFERENCES cities(id)
	);

	CREATE TABLE IF NOT EXISTS location_images (
		location_id UUID NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		image_id UUID NOT NULL REFERENCES images(id) ON DELETE CASCADE,
		PRIMARY KEY (location_id, image_id)
	);

	CREATE TABLE IF NOT EXISTS cleandays (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		begin_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		organization TEXT NOT NULL DEFAULT '',
		area INT NOT NULL DEFAULT 0,
		recommended_count INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		results TEXT[],
		location_id UUID NOT NULL REFERENCES locations(id)
	);

	CREATE TABLE IF NOT EXISTS cleanday_images (
		cleanday_id UUID NOT NULL REFERENCES cleandays(id) ON DELETE CASCADE,
		image_id UUID NOT NULL REFERENCES images(id) ON DELETE CASCADE,
		PRIMARY KEY (cleanday_id, image_id)
	);

	CREATE TABLE IF NOT EXISTS participations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		cleanday_id UUID NOT NULL REFERENCES cleandays(id),
		type TEXT NOT NULL,
		stat INT NOT NULL DEFAULT 0,
		real_presence BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (user_id, cleanday_id)
	);

	CREATE TABLE IF NOT EXISTS requirements (
		id UUID PRIMARY KEY,
		cleanday_id UUID NOT NULL REFERENCES cleandays(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fulfillments (
		participation_id UUID NOT NULL REFERENCES participations(id) ON DELETE CASCADE,
		requirement_id UUID NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
		PRIMARY KEY (participation_id, requirement_id)
	);

	CREATE TABLE IF NOT EXISTS comments (
		id UUID PRIMARY KEY,
		participation_id UUID NOT NULL REFERENCES participations(id),
		cleanday_id UUID NOT NULL REFERENCES cleandays(id),
		text TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS logs (
		id UUID PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		cleanday_id UUID REFERENCES cleandays(id),
		user_id UUID REFERENCES users(id),
		comment_id UUID REFERENCES comments(id),
		location_id UUID REFERENCES locations(id),
		city_id UUID REFERENCES cities(id)
	);

	CREATE INDEX IF NOT EXISTS idx_participations_cleanday ON participations(cleanday_id);
	CREATE INDEX IF NOT EXISTS idx_participations_user ON participations(user_id);
	CREATE INDEX IF NOT EXISTS idx_requirements_cleanday ON requirements(cleanday_id);
	CREATE INDEX IF NOT EXISTS idx_fulfillments_requirement ON fulfillments(requirement_id);
	CREATE INDEX IF NOT EXISTS idx_comments_cleanday ON comments(cleanday_id);
	CREATE INDEX IF NOT EXISTS idx_logs_cleanday ON logs(cleanday_id, type);
	CREATE INDEX IF NOT EXISTS idx_logs_user ON logs(user_id, type);
	`

func (db *Database) initSchema() error {
	_, err := db.Pool.Exec(context.Background(), schema)
	return err
}

// inTx выполняет fn внутри транзакции: любая ошибка откатывает всё.
func (db *Database) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (db *Database) Close() {
	db.Pool.Close()
}
