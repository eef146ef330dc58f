package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/bonssss/chat-app/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// InitSchema creates tables if they don't exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages (sender_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages (recipient_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		full_name TEXT,
		avatar_url TEXT,
		bio TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateAccount creates a new account record.
func (s *PostgresStore) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, created_at
	`, uuid.Must(uuid.NewV7()), email, passwordHash).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccountByID retrieves an account by ID.
func (s *PostgresStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE id = $1
	`, id).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by email.
func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE email = $1
	`, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// CountAccounts returns the total number of accounts.
func (s *PostgresStore) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

// InsertMessage stores a new message, assigning its ID and timestamp.
func (s *PostgresStore) InsertMessage(ctx context.Context, text, senderID, recipientID string) (*models.Message, error) {
	msg := &models.Message{
		ID:          ulid.Make().String(),
		Text:        text,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, text, sender_id, recipient_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.Text, msg.SenderID, msg.RecipientID, msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MessagesBetween retrieves messages exchanged between a and b in either
// direction, newest first, capped at limit.
func (s *PostgresStore) MessagesBetween(ctx context.Context, a, b string, limit int) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, sender_id, recipient_id, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC
		LIMIT $3
	`, a, b, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MessagesInvolving retrieves all messages sent or received by the account,
// newest first.
func (s *PostgresStore) MessagesInvolving(ctx context.Context, accountID string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, sender_id, recipient_id, created_at
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.Text,
			&msg.SenderID,
			&msg.RecipientID,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CountMessages returns the total number of messages.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// GetProfile retrieves a profile by ID.
func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, full_name, avatar_url, bio, updated_at
		FROM profiles WHERE id = $1
	`, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpsertProfile inserts or updates a profile keyed on its ID. The stored
// updated_at is written back onto p so callers can return the saved row.
func (s *PostgresStore) UpsertProfile(ctx context.Context, p *models.Profile) error {
	var updated time.Time
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username, full_name, avatar_url, bio, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			bio = EXCLUDED.bio,
			updated_at = NOW()
		RETURNING updated_at
	`, p.ID, p.Username, p.FullName, p.AvatarURL, p.Bio).Scan(&updated)
	if err != nil {
		return err
	}
	p.UpdatedAt = &updated
	return nil
}
