package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"onegoodthing/internal/models"
	"time"
)

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC',
		reminder_hour INTEGER NOT NULL DEFAULT 20,
		reminder_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		ai_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS journal_entries (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		entry_date DATE NOT NULL,
		entry_text TEXT NOT NULL,
		mood_score SMALLINT CHECK (mood_score BETWEEN 1 AND 5),
		tags TEXT[] NOT NULL DEFAULT '{}',
		ai_reflection TEXT,
		photo_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, entry_date)
	)`,
	`CREATE INDEX IF NOT EXISTS journal_entries_user_date_idx ON journal_entries (user_id, entry_date DESC)`,
}

const entryColumns = `id, user_id, entry_date, entry_text, mood_score, tags, ai_reflection, photo_url, created_at`
const profileColumns = `id, email, timezone, reminder_hour, reminder_enabled, ai_enabled, created_at`

type entryRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	EntryDate  models.Date    `db:"entry_date"`
	EntryText  string         `db:"entry_text"`
	MoodScore  sql.NullInt32  `db:"mood_score"`
	Tags       pq.StringArray `db:"tags"`
	Reflection sql.NullString `db:"ai_reflection"`
	PhotoURL   sql.NullString `db:"photo_url"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r entryRow) toModel() models.JournalEntry {
	e := models.JournalEntry{
		ID:         r.ID,
		OwnerID:    r.UserID,
		EntryDate:  r.EntryDate,
		Text:       r.EntryText,
		Tags:       []string(r.Tags),
		Reflection: r.Reflection.String,
		PhotoURL:   r.PhotoURL.String,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if r.MoodScore.Valid {
		m := int(r.MoodScore.Int32)
		e.MoodScore = &m
	}
	return e
}

type profileRow struct {
	ID              string    `db:"id"`
	Email           string    `db:"email"`
	Timezone        string    `db:"timezone"`
	ReminderHour    int       `db:"reminder_hour"`
	ReminderEnabled bool      `db:"reminder_enabled"`
	AIEnabled       bool      `db:"ai_enabled"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r profileRow) toModel() models.Profile {
	return models.Profile{
		ID:              r.ID,
		Email:           r.Email,
		Timezone:        r.Timezone,
		ReminderHour:    r.ReminderHour,
		ReminderEnabled: r.ReminderEnabled,
		AIEnabled:       r.AIEnabled,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

// PostgresStore keeps entries and profiles in PostgreSQL.
type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func OpenPostgres(ctx context.Context, dsn string, maxOpenConns int) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *PostgresStore) Driver() string { return "postgres" }

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.OwnerID, entry.EntryDate, entry.Text, nullMood(entry.MoodScore), pq.StringArray(tags),
		nullString(entry.Reflection), nullString(entry.PhotoURL), entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.JournalEntry{}, models.ErrDuplicateDay
		}
		return models.JournalEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	entry.Tags = tags
	return entry, nil
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, ownerID string, from, to models.Date) ([]models.JournalEntry, error) {
	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = $1
		  AND ($2::date IS NULL OR entry_date >= $2::date)
		  AND ($3::date IS NULL OR entry_date <= $3::date)
		ORDER BY entry_date DESC, created_at DESC
	`, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]models.JournalEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStore) GetEntryByDate(ctx context.Context, ownerID string, date models.Date) (models.JournalEntry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = $1 AND entry_date = $2
	`, ownerID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, models.ErrNotFound
	}
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) CountEntries(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM journal_entries WHERE user_id = $1`, ownerID); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, models.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now().UTC()
	}
	var createdAt time.Time
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, timezone = EXCLUDED.timezone, reminder_hour = EXCLUDED.reminder_hour,
		    reminder_enabled = EXCLUDED.reminder_enabled, ai_enabled = EXCLUDED.ai_enabled
		RETURNING created_at
	`, profile.ID, profile.Email, profile.Timezone, profile.ReminderHour, profile.ReminderEnabled, profile.AIEnabled, profile.CreatedAt).Scan(&createdAt)
	if err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	profile.CreatedAt = createdAt.UTC()
	return profile, nil
}

func (s *PostgresStore) ListReminderProfiles(ctx context.Context) ([]models.Profile, error) {
	out, err := s.profilesWhere(ctx, "reminder_enabled")
	if err != nil {
		return nil, fmt.Errorf("list reminder profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	out, err := s.profilesWhere(ctx, "email <> ''")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// profilesWhere takes a fixed predicate, never user input.
func (s *PostgresStore) profilesWhere(ctx context.Context, predicate string) ([]models.Profile, error) {
	var rows []profileRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE `+predicate+`
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullMood(m *int) sql.NullInt32 {
	if m == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*m), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
