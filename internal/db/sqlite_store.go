// Package db implements the persistence layer on SQLite.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kingstonroots/yaadstory/internal/models"
	"github.com/kingstonroots/yaadstory/internal/services"
)

// SQLiteStore is an explicitly constructed persistence handle; it owns no
// global state and is injected wherever storage access is needed.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteStore(db *sql.DB, log *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTranscriptions(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SQLiteStore) decodeTranscriptions(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Warn("decode transcriptions", zap.Error(err))
		return []string{}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// --- Users ---

// CreateUser inserts a new user. A username collision, including one lost to
// a concurrent registration, surfaces as a conflict error.
func (s *SQLiteStore) CreateUser(u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("nil user")
	}
	res, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, name, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Name, string(u.Role), formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.NewConflictError("username already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	created := *u
	created.ID = id
	return &created, nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role, created string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *SQLiteStore) FindUserByUsername(username string) (*models.User, error) {
	row := s.db.QueryRow(
		`SELECT id, username, password_hash, name, role, created_at FROM users WHERE username = ?`,
		username,
	)
	return s.scanUser(row)
}

func (s *SQLiteStore) GetUserByID(id int64) (*models.User, error) {
	row := s.db.QueryRow(
		`SELECT id, username, password_hash, name, role, created_at FROM users WHERE id = ?`,
		id,
	)
	return s.scanUser(row)
}

// --- Questions ---

func (s *SQLiteStore) ListQuestions() ([]*models.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, text, text_patois, section, position FROM questions ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Warn("list questions: rows.Close", zap.Error(cerr))
		}
	}()
	out := []*models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.TextPatois, &q.Section, &q.Order); err != nil {
			return nil, err
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetQuestion(id int64) (*models.Question, error) {
	row := s.db.QueryRow(
		`SELECT id, text, text_patois, section, position FROM questions WHERE id = ?`,
		id,
	)
	var q models.Question
	err := row.Scan(&q.ID, &q.Text, &q.TextPatois, &q.Section, &q.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// --- Responses ---

const responseColumns = `id, question_id, user_id, text_response, audio_url, transcriptions, created_at`

func (s *SQLiteStore) scanResponse(scan func(dest ...any) error) (*models.Response, error) {
	var r models.Response
	var transcriptions, created string
	err := scan(&r.ID, &r.QuestionID, &r.UserID, &r.TextResponse, &r.AudioURL, &transcriptions, &created)
	if err != nil {
		return nil, err
	}
	r.Transcriptions = s.decodeTranscriptions(transcriptions)
	r.CreatedAt = parseTime(created)
	return &r, nil
}

// UpsertResponse writes the caller's answer for one question. The UNIQUE
// (question_id, user_id) constraint plus ON CONFLICT DO UPDATE makes the
// insert-or-overwrite atomic, so two concurrent saves for the same pair can
// never produce two rows. On update the row id and created_at are preserved
// and every mutable field takes the new value, including cleared ones.
func (s *SQLiteStore) UpsertResponse(r *models.Response) (*models.Response, error) {
	if r == nil {
		return nil, errors.New("nil response")
	}
	transcriptions, err := encodeTranscriptions(r.Transcriptions)
	if err != nil {
		return nil, fmt.Errorf("encode transcriptions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO responses (question_id, user_id, text_response, audio_url, transcriptions, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (question_id, user_id) DO UPDATE SET
             text_response = excluded.text_response,
             audio_url = excluded.audio_url,
             transcriptions = excluded.transcriptions`,
		r.QuestionID, r.UserID, r.TextResponse, r.AudioURL, transcriptions, formatTime(r.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert response: %w", err)
	}
	row := s.db.QueryRow(
		`SELECT `+responseColumns+` FROM responses WHERE question_id = ? AND user_id = ?`,
		r.QuestionID, r.UserID,
	)
	stored, err := s.scanResponse(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("reload response: %w", err)
	}
	return stored, nil
}

func (s *SQLiteStore) GetResponse(id int64) (*models.Response, error) {
	row := s.db.QueryRow(`SELECT `+responseColumns+` FROM responses WHERE id = ?`, id)
	r, err := s.scanResponse(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *SQLiteStore) ListResponsesByUser(userID int64) ([]*models.Response, error) {
	rows, err := s.db.Query(
		`SELECT `+responseColumns+` FROM responses WHERE user_id = ? ORDER BY question_id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Warn("list responses: rows.Close", zap.Error(cerr))
		}
	}()
	out := []*models.Response{}
	for rows.Next() {
		r, err := s.scanResponse(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteResponsesByUser removes every response owned by the user. Deleting
// zero rows is not an error.
func (s *SQLiteStore) DeleteResponsesByUser(userID int64) error {
	if _, err := s.db.Exec(`DELETE FROM responses WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	return nil
}

// ListAllResponses returns every response joined with its owner, ordered by
// username then question, for the admin review view.
func (s *SQLiteStore) ListAllResponses() ([]*services.ResponseWithUser, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.question_id, r.user_id, r.text_response, r.audio_url, r.transcriptions, r.created_at,
                u.username, u.name
         FROM responses r JOIN users u ON u.id = r.user_id
         ORDER BY u.username ASC, r.question_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all responses: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Warn("list all responses: rows.Close", zap.Error(cerr))
		}
	}()
	out := []*services.ResponseWithUser{}
	for rows.Next() {
		var rw services.ResponseWithUser
		var transcriptions, created string
		if err := rows.Scan(
			&rw.ID, &rw.QuestionID, &rw.UserID, &rw.TextResponse, &rw.AudioURL,
			&transcriptions, &created, &rw.Username, &rw.UserName,
		); err != nil {
			return nil, err
		}
		rw.Transcriptions = s.decodeTranscriptions(transcriptions)
		rw.CreatedAt = parseTime(created)
		out = append(out, &rw)
	}
	return out, rows.Err()
}
