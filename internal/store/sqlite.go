package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/bonssss/chat-app/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback when DATABASE_URL is not configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/chat.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chat.db"
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// A pooled second connection to ":memory:" would get its own empty
	// database; SQLite allows one writer at a time anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages (sender_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages (recipient_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		full_name TEXT,
		avatar_url TEXT,
		bio TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateAccount creates a new account record.
func (s *SQLiteStore) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	account := &models.Account{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, account.ID.String(), account.Email, account.PasswordHash, account.CreatedAt)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *SQLiteStore) scanAccount(row *sql.Row) (*models.Account, error) {
	var idStr string
	account := &models.Account{}
	err := row.Scan(&idStr, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	account.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccountByID retrieves an account by ID.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE id = ?
	`, id.String())
	return s.scanAccount(row)
}

// GetAccountByEmail retrieves an account by email.
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE email = ?
	`, email)
	return s.scanAccount(row)
}

// CountAccounts returns the total number of accounts.
func (s *SQLiteStore) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

// InsertMessage stores a new message, assigning its ID and timestamp.
func (s *SQLiteStore) InsertMessage(ctx context.Context, text, senderID, recipientID string) (*models.Message, error) {
	msg := &models.Message{
		ID:          ulid.Make().String(),
		Text:        text,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, text, sender_id, recipient_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.Text, msg.SenderID, msg.RecipientID, msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MessagesBetween retrieves messages exchanged between a and b in either
// direction, newest first, capped at limit.
func (s *SQLiteStore) MessagesBetween(ctx context.Context, a, b string, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, sender_id, recipient_id, created_at
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?)
		   OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, a, b, b, a, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLMessages(rows)
}

// MessagesInvolving retrieves all messages sent or received by the account,
// newest first.
func (s *SQLiteStore) MessagesInvolving(ctx context.Context, accountID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, sender_id, recipient_id, created_at
		FROM messages
		WHERE sender_id = ? OR recipient_id = ?
		ORDER BY created_at DESC, id DESC
	`, accountID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLMessages(rows)
}

func scanSQLMessages(rows *sql.Rows) ([]models.Message, error) {
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
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// GetProfile retrieves a profile by ID.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, avatar_url, bio, updated_at
		FROM profiles WHERE id = ?
	`, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpsertProfile inserts or updates a profile keyed on its ID. The stored
// updated_at is written back onto p so callers can return the saved row.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, full_name, avatar_url, bio, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			updated_at = excluded.updated_at
	`, p.ID, p.Username, p.FullName, p.AvatarURL, p.Bio, now)
	if err != nil {
		return err
	}
	p.UpdatedAt = &now
	return nil
}
