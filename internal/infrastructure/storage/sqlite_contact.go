package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
)

type sqliteContactRepository struct {
	db *sql.DB
}

// NewSQLiteContactRepository SQLite asosidagi kontakt repository
func NewSQLiteContactRepository(dbPath string) (repository.ContactRepository, error) {
	if dbPath == "" {
		return nil, errors.New("db path bo'sh bo'lmasligi kerak")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("db papkasini yaratib bo'lmadi: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite ochilmadi: %w", err)
	}
	// bitta ulanish: :memory: bazasi ulanishlar orasida bo'linmaydi
	db.SetMaxOpenConns(1)

	if err := createContactSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteContactRepository{db: db}, nil
}

func createContactSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	chat_id INTEGER PRIMARY KEY,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	language_code TEXT NOT NULL DEFAULT '',
	first_seen TIMESTAMP NOT NULL,
	last_seen TIMESTAMP NOT NULL,
	messages INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_contacts_last_seen ON contacts (last_seen);
`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("schema yaratib bo'lmadi: %w", err)
	}
	return nil
}

// Touch kontaktni qo'shish yoki yangilash
func (s *sqliteContactRepository) Touch(ctx context.Context, contact entity.Contact) error {
	messages := contact.Messages
	if messages <= 0 {
		messages = 1
	}
	lastSeen := contact.LastSeen.UTC()
	firstSeen := contact.FirstSeen.UTC()
	if contact.FirstSeen.IsZero() {
		firstSeen = lastSeen
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO contacts (chat_id, username, first_name, last_name, language_code, first_seen, last_seen, messages)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chat_id) DO UPDATE SET
	username = CASE WHEN excluded.username <> '' THEN excluded.username ELSE contacts.username END,
	first_name = CASE WHEN excluded.first_name <> '' THEN excluded.first_name ELSE contacts.first_name END,
	last_name = CASE WHEN excluded.last_name <> '' THEN excluded.last_name ELSE contacts.last_name END,
	language_code = CASE WHEN excluded.language_code <> '' THEN excluded.language_code ELSE contacts.language_code END,
	last_seen = CASE WHEN excluded.last_seen > contacts.last_seen THEN excluded.last_seen ELSE contacts.last_seen END,
	messages = contacts.messages + excluded.messages`,
		contact.ChatID, contact.Username, contact.FirstName, contact.LastName, contact.LanguageCode,
		firstSeen, lastSeen, messages)
	if err != nil {
		return fmt.Errorf("kontaktni saqlab bo'lmadi: %w", err)
	}
	return nil
}

// Get chat ID bo'yicha kontaktni olish
func (s *sqliteContactRepository) Get(ctx context.Context, chatID int64) (*entity.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT chat_id, username, first_name, last_name, language_code, first_seen, last_seen, messages
FROM contacts WHERE chat_id = ?`, chatID)

	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat %d: %w", chatID, repository.ErrContactNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List oxirgi faollik bo'yicha kamayish tartibida
func (s *sqliteContactRepository) List(ctx context.Context, limit int) ([]entity.Contact, error) {
	query := `
SELECT chat_id, username, first_name, last_name, language_code, first_seen, last_seen, messages
FROM contacts ORDER BY last_seen DESC, chat_id ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []entity.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Count jami kontaktlar
func (s *sqliteContactRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close bazani yopish
func (s *sqliteContactRepository) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (entity.Contact, error) {
	var c entity.Contact
	var firstSeen, lastSeen time.Time
	if err := row.Scan(&c.ChatID, &c.Username, &c.FirstName, &c.LastName, &c.LanguageCode, &firstSeen, &lastSeen, &c.Messages); err != nil {
		return entity.Contact{}, err
	}
	c.FirstSeen = firstSeen
	c.LastSeen = lastSeen
	return c, nil
}
