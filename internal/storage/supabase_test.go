package storage

import (
	"context"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"net/http/httptest"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupabase(t *testing.T, handler http.HandlerFunc) *SupabaseStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSupabaseStore(srv.URL+"/", "service-key", time.Second)
}

func TestSupabaseStore_ListEntriesCoercesRows(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/journal_entries", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, []string{"gte.2024-01-01", "lte.2024-01-31"}, r.URL.Query()["entry_date"])
		assert.Equal(t, "entry_date.desc,id.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		_, _ = w.Write([]byte(`[
			{"id":"e2","user_id":"u1","entry_date":"2024-01-02","entry_text":"walk","mood_score":"4","tags":["nature"],"ai_reflection":null,"created_at":"2024-01-02T08:00:00+00:00"},
			{"id":"e1","user_id":"u1","entry_date":"2024-01-01","entry_text":"tea","mood_score":null,"tags":null,"created_at":"2024-01-01T08:00:00Z"},
			{"id":"e0","user_id":"u1","entry_date":"2024-01-01","entry_text":"odd","mood_score":9}
		]`))
	})

	ctx := providers.WithUser(context.Background(), models.User{ID: "u1"}, "user-token")
	list, err := store.ListEntries(ctx, "u1", models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NotNil(t, list[0].MoodScore)
	assert.Equal(t, 4, *list[0].MoodScore)
	assert.Equal(t, []string{"nature"}, list[0].Tags)
	assert.Equal(t, "", list[0].Reflection)
	assert.Equal(t, 8, list[0].CreatedAt.Hour())

	assert.Nil(t, list[1].MoodScore)
	assert.Equal(t, []string{}, list[1].Tags)

	assert.Equal(t, models.NewDate(2024, time.January, 1), list[2].EntryDate)
	assert.Nil(t, list[2].MoodScore, "out of range moods are dropped")
}

func TestSupabaseStore_CreateEntry(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var row map[string]any
		require.NoError(t, json.Unmarshal(body, &row))
		assert.Equal(t, "2024-01-02", row["entry_date"])
		assert.Equal(t, float64(5), row["mood_score"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("[" + string(body) + "]"))
	})

	created, err := store.CreateEntry(context.Background(), newEntry("u1", models.NewDate(2024, time.January, 2), mood(5)))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 5, *created.MoodScore)
	assert.Equal(t, []string{"calm"}, created.Tags)
}

func TestSupabaseStore_CreateEntryConflict(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value"}`))
	})
	_, err := store.CreateEntry(context.Background(), newEntry("u1", models.NewDate(2024, time.January, 2), nil))
	assert.ErrorIs(t, err, models.ErrDuplicateDay)
}

func TestSupabaseStore_DeleteAndGetNotFound(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	assert.ErrorIs(t, store.DeleteEntry(context.Background(), "u1", "missing"), models.ErrNotFound)
	_, err := store.GetEntryByDate(context.Background(), "u1", models.NewDate(2024, time.January, 2))
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.GetProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSupabaseStore_CountEntries(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "0-0/42")
	})
	n, err := store.CountEntries(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestSupabaseStore_Profiles(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
			body, _ := io.ReadAll(r.Body)
			_, _ = w.Write([]byte("[" + string(body) + "]"))
		default:
			assert.Equal(t, "eq.true", r.URL.Query().Get("reminder_enabled"))
			_, _ = w.Write([]byte(`[{"id":"u1","email":"a@b.c","timezone":null,"reminder_hour":"8","reminder_enabled":true}]`))
		}
	})

	p := models.DefaultProfile("u1", "a@b.c")
	p.Timezone = "Europe/Rome"
	saved, err := store.SaveProfile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Rome", saved.Timezone)

	list, err := store.ListReminderProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "UTC", list[0].Timezone)
	assert.Equal(t, 8, list[0].ReminderHour)
	assert.True(t, list[0].AIEnabled)
}

func TestSupabaseStore_ListEntriesPagesUntilShortPage(t *testing.T) {
	var offsets []string
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)
		switch offset {
		case "0":
			_, _ = w.Write([]byte(`[{"id":"e5","entry_date":"2024-01-05"},{"id":"e4","entry_date":"2024-01-04"}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"id":"e3","entry_date":"2024-01-03"},{"id":"e2","entry_date":"2024-01-02"}]`))
		default:
			_, _ = w.Write([]byte(`[{"id":"e1","entry_date":"2024-01-01"}]`))
		}
	})
	store.pageSize = 2

	entries, err := store.ListEntries(context.Background(), "u1", models.Date{}, models.Date{})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "e5", entries[0].ID)
	assert.Equal(t, "e1", entries[4].ID)
	assert.Equal(t, []string{"0", "2", "4"}, offsets)
}

func TestSupabaseStore_ListProfilesSkipsBlankEmails(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		assert.Equal(t, "not.is.null", r.URL.Query().Get("email"))
		assert.Equal(t, "id.asc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":"u1","email":"a@b.c"},{"id":"u2","email":""}]`))
	})

	list, err := store.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].ID)
}

func TestSupabaseStore_ServerError(t *testing.T) {
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	})
	_, err := store.ListEntries(context.Background(), "u1", models.Date{}, models.Date{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestParseContentRange(t *testing.T) {
	n, err := parseContentRange("*/0")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = parseContentRange("")
	assert.Error(t, err)
}
