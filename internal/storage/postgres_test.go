package storage

import (
	"context"
	"database/sql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"onegoodthing/internal/models"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryCols = []string{"id", "user_id", "entry_date", "entry_text", "mood_score", "tags", "ai_reflection", "photo_url", "created_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	store, mock := newMockStore(t)
	for range schema {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateEntry(t *testing.T) {
	store, mock := newMockStore(t)
	entry := newEntry("u1", models.NewDate(2024, time.January, 2), mood(4))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journal_entries")).
		WithArgs(sqlmock.AnyArg(), "u1", "2024-01-02", "a good thing", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateEntryDuplicateDay(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journal_entries")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := store.CreateEntry(context.Background(), newEntry("u1", models.NewDate(2024, time.January, 2), nil))
	assert.ErrorIs(t, err, models.ErrDuplicateDay)
}

func TestPostgresStore_ListEntries(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(entryCols).
		AddRow("8f1e6a4e-0d7a-4c59-8a43-2f4a3f6f9d11", "u1", created, "sunrise", int64(4), "{family,calm}", "Lovely.", nil, created).
		AddRow("0b5c2b8c-51f2-4a4e-9d0f-6f8d3c2b1a00", "u1", "2024-01-01", "tea", nil, "{}", nil, nil, created)

	mock.ExpectQuery(regexp.QuoteMeta("FROM journal_entries")).
		WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	list, err := store.ListEntries(context.Background(), "u1", models.Date{}, models.NewDate(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, models.NewDate(2024, time.January, 2), list[0].EntryDate)
	require.NotNil(t, list[0].MoodScore)
	assert.Equal(t, 4, *list[0].MoodScore)
	assert.Equal(t, []string{"family", "calm"}, list[0].Tags)
	assert.Equal(t, "Lovely.", list[0].Reflection)

	assert.Nil(t, list[1].MoodScore)
	assert.Equal(t, []string{}, list[1].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEntryByDateNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM journal_entries")).
		WithArgs("u1", "2024-01-02").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetEntryByDate(context.Background(), "u1", models.NewDate(2024, time.January, 2))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgresStore_DeleteEntry(t *testing.T) {
	store, mock := newMockStore(t)
	id := "8f1e6a4e-0d7a-4c59-8a43-2f4a3f6f9d11"

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journal_entries")).
		WithArgs(id, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journal_entries")).
		WithArgs(id, "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.DeleteEntry(context.Background(), "u1", id))
	assert.ErrorIs(t, store.DeleteEntry(context.Background(), "u2", id), models.ErrNotFound)
	assert.ErrorIs(t, store.DeleteEntry(context.Background(), "u1", "not-a-uuid"), models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountEntries(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM journal_entries")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.CountEntries(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestPostgresStore_Profiles(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "email", "timezone", "reminder_hour", "reminder_enabled", "ai_enabled", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "u1@example.com", "Asia/Tokyo", 7, true, false, created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE reminder_enabled")).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "u1@example.com", "Asia/Tokyo", 7, true, false, created))

	p, err := store.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", p.Timezone)
	assert.Equal(t, 7, p.ReminderHour)
	assert.False(t, p.AIEnabled)

	p.ReminderHour = 9
	saved, err := store.SaveProfile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, 9, saved.ReminderHour)

	list, err := store.ListReminderProfiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProfiles(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "email", "timezone", "reminder_hour", "reminder_enabled", "ai_enabled", "created_at"}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email <> ''")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "u1@example.com", "UTC", 20, false, true, created).
			AddRow("u2", "u2@example.com", "UTC", 20, true, true, created))

	list, err := store.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1", list[0].ID)
	assert.False(t, list[0].ReminderEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
