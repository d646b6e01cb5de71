// Package leads handles persistent storage of captured leads and
// unanswered questions using SQLite.
//
// This is a side-channel record only; conversation state is never
// persisted here.
package leads

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
)

// Store manages the leads database.
type Store struct {
	db *sql.DB
}

// Lead is one captured contact record.
type Lead struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	MobileNo  string    `json:"mobile_no"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// UnknownQuestion is one question the persona context could not answer.
type UnknownQuestion struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens the SQLite database at the given path.
// Creates the database and tables if they don't exist.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreFailed,
			"opening leads database", apperrors.CategorySystem)
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leads (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL,
		mobile_no  TEXT NOT NULL,
		notes      TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at DESC);

	CREATE TABLE IF NOT EXISTS unknown_questions (
		id         TEXT PRIMARY KEY,
		question   TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_unknown_questions_created ON unknown_questions(created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreFailed,
			"initializing leads schema", apperrors.CategorySystem)
	}
	return nil
}

// SaveLead records one captured contact. Identical calls insert
// independent rows; there is no deduplication.
func (s *Store) SaveLead(ctx context.Context, email, name, mobileNo, notes string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, email, name, mobile_no, notes) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), email, name, mobileNo, notes)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreFailed,
			"inserting lead", apperrors.CategorySystem)
	}
	return nil
}

// SaveUnknownQuestion records one unanswered question.
func (s *Store) SaveUnknownQuestion(ctx context.Context, question string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unknown_questions (id, question) VALUES (?, ?)`,
		uuid.NewString(), question)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreFailed,
			"inserting unknown question", apperrors.CategorySystem)
	}
	return nil
}

// RecentLeads returns the newest leads, most recent first.
func (s *Store) RecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, mobile_no, notes, created_at
		 FROM leads ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreFailed,
			"querying leads", apperrors.CategorySystem)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		var createdAt int64
		if err := rows.Scan(&l.ID, &l.Email, &l.Name, &l.MobileNo, &l.Notes, &createdAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStoreFailed,
				"scanning lead", apperrors.CategorySystem)
		}
		l.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, l)
	}
	return out, rows.Err()
}

// RecentUnknownQuestions returns the newest unanswered questions,
// most recent first.
func (s *Store) RecentUnknownQuestions(ctx context.Context, limit int) ([]UnknownQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, created_at
		 FROM unknown_questions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreFailed,
			"querying unknown questions", apperrors.CategorySystem)
	}
	defer rows.Close()

	var out []UnknownQuestion
	for rows.Next() {
		var q UnknownQuestion
		var createdAt int64
		if err := rows.Scan(&q.ID, &q.Question, &createdAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStoreFailed,
				"scanning unknown question", apperrors.CategorySystem)
		}
		q.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, q)
	}
	return out, rows.Err()
}
