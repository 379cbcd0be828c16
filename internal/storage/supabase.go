package storage

import (
	"bytes"
	"context"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"io"
	"net/http"
	"net/url"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"strconv"
	"strings"
	"time"
)

const (
	entriesTable  = "journal_entries"
	profilesTable = "profiles"

	// stays under PostgREST's usual max-rows so a full page is never clipped
	defaultPageSize = 500
)

// SupabaseStore reads and writes rows through the hosted PostgREST API.
// Requests carry the caller's token when the context has one, so row level
// security applies; background jobs fall back to the service key.
type SupabaseStore struct {
	prefix     string
	serviceKey string
	client     *http.Client
	now        func() time.Time
	pageSize   int
}

func NewSupabaseStore(projectURL, serviceKey string, timeout time.Duration) *SupabaseStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseStore{
		prefix:     strings.TrimRight(projectURL, "/") + "/rest/v1",
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
		pageSize:   defaultPageSize,
	}
}

func (s *SupabaseStore) Driver() string { return "supabase" }

func (s *SupabaseStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

type restError struct {
	Status int
	Body   string
}

func (e *restError) Error() string {
	return fmt.Sprintf("supabase error (%d): %s", e.Status, e.Body)
}

func (s *SupabaseStore) do(ctx context.Context, method, table string, query url.Values, body any, prefer string) ([]map[string]any, http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal %s row: %w", table, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := s.prefix + "/" + url.PathEscape(table)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	token := providers.TokenFromContext(ctx)
	if token == "" {
		token = s.serviceKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("supabase %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, resp.Header, &restError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if method == http.MethodHead || len(bytes.TrimSpace(data)) == 0 {
		return nil, resp.Header, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, nil, fmt.Errorf("decode %s rows: %w", table, err)
	}
	return rows, resp.Header, nil
}

// list pages through a GET with limit/offset until a short page comes back.
// The query needs a total order so pages do not overlap.
func (s *SupabaseStore) list(ctx context.Context, table string, query url.Values) ([]map[string]any, error) {
	var all []map[string]any
	for offset := 0; ; offset += s.pageSize {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("limit", strconv.Itoa(s.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		rows, _, err := s.do(ctx, http.MethodGet, table, q, nil, "")
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) < s.pageSize {
			return all, nil
		}
	}
}

func (s *SupabaseStore) CreateEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	rows, _, err := s.do(ctx, http.MethodPost, entriesTable, nil, entryToRow(entry), "return=representation")
	if err != nil {
		if isConflict(err) {
			return models.JournalEntry{}, models.ErrDuplicateDay
		}
		return models.JournalEntry{}, err
	}
	if len(rows) == 0 {
		return entry, nil
	}
	return rowToEntry(rows[0])
}

func (s *SupabaseStore) DeleteEntry(ctx context.Context, ownerID, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+ownerID)
	rows, _, err := s.do(ctx, http.MethodDelete, entriesTable, q, nil, "return=representation")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *SupabaseStore) ListEntries(ctx context.Context, ownerID string, from, to models.Date) ([]models.JournalEntry, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	if !from.IsZero() {
		q.Add("entry_date", "gte."+from.String())
	}
	if !to.IsZero() {
		q.Add("entry_date", "lte."+to.String())
	}
	q.Set("order", "entry_date.desc,id.asc")

	rows, err := s.list(ctx, entriesTable, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.JournalEntry, 0, len(rows))
	for _, row := range rows {
		e, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *SupabaseStore) GetEntryByDate(ctx context.Context, ownerID string, date models.Date) (models.JournalEntry, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("entry_date", "eq."+date.String())
	q.Set("limit", "1")

	rows, _, err := s.do(ctx, http.MethodGet, entriesTable, q, nil, "")
	if err != nil {
		return models.JournalEntry{}, err
	}
	if len(rows) == 0 {
		return models.JournalEntry{}, models.ErrNotFound
	}
	return rowToEntry(rows[0])
}

func (s *SupabaseStore) CountEntries(ctx context.Context, ownerID string) (int, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("user_id", "eq."+ownerID)
	_, header, err := s.do(ctx, http.MethodHead, entriesTable, q, nil, "count=exact")
	if err != nil {
		return 0, err
	}
	return parseContentRange(header.Get("Content-Range"))
}

func (s *SupabaseStore) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("limit", "1")
	rows, _, err := s.do(ctx, http.MethodGet, profilesTable, q, nil, "")
	if err != nil {
		return models.Profile{}, err
	}
	if len(rows) == 0 {
		return models.Profile{}, models.ErrNotFound
	}
	return rowToProfile(rows[0]), nil
}

func (s *SupabaseStore) SaveProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now().UTC()
	}
	rows, _, err := s.do(ctx, http.MethodPost, profilesTable, nil, profileToRow(profile), "resolution=merge-duplicates,return=representation")
	if err != nil {
		return models.Profile{}, err
	}
	if len(rows) == 0 {
		return profile, nil
	}
	return rowToProfile(rows[0]), nil
}

func (s *SupabaseStore) ListReminderProfiles(ctx context.Context) ([]models.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("reminder_enabled", "eq.true")
	q.Set("order", "id.asc")
	return s.listProfiles(ctx, q)
}

func (s *SupabaseStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("email", "not.is.null")
	q.Set("order", "id.asc")
	profiles, err := s.listProfiles(ctx, q)
	if err != nil {
		return nil, err
	}
	out := profiles[:0]
	for _, p := range profiles {
		if p.Email != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *SupabaseStore) listProfiles(ctx context.Context, q url.Values) ([]models.Profile, error) {
	rows, err := s.list(ctx, profilesTable, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToProfile(row))
	}
	return out, nil
}

func entryToRow(e models.JournalEntry) map[string]any {
	row := map[string]any{
		"id":         e.ID,
		"user_id":    e.OwnerID,
		"entry_date": e.EntryDate.String(),
		"entry_text": e.Text,
		"mood_score": nil,
		"tags":       e.Tags,
		"created_at": e.CreatedAt.Format(time.RFC3339Nano),
	}
	if e.Tags == nil {
		row["tags"] = []string{}
	}
	if e.MoodScore != nil {
		row["mood_score"] = *e.MoodScore
	}
	if e.Reflection != "" {
		row["ai_reflection"] = e.Reflection
	}
	if e.PhotoURL != "" {
		row["photo_url"] = e.PhotoURL
	}
	return row
}

// rowToEntry coerces a loosely typed row into a JournalEntry. Numbers may
// arrive as strings and nullable columns as null.
func rowToEntry(row map[string]any) (models.JournalEntry, error) {
	date, err := models.ParseDate(cast.ToString(row["entry_date"]))
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("row %v: %w", row["id"], err)
	}
	e := models.JournalEntry{
		ID:         cast.ToString(row["id"]),
		OwnerID:    cast.ToString(row["user_id"]),
		EntryDate:  date,
		Text:       cast.ToString(row["entry_text"]),
		Tags:       cast.ToStringSlice(row["tags"]),
		Reflection: cast.ToString(row["ai_reflection"]),
		PhotoURL:   cast.ToString(row["photo_url"]),
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if raw, ok := row["mood_score"]; ok && raw != nil {
		m, err := cast.ToIntE(raw)
		if err == nil && m >= models.MinMoodScore && m <= models.MaxMoodScore {
			e.MoodScore = &m
		}
	}
	if created, err := cast.ToTimeE(row["created_at"]); err == nil {
		e.CreatedAt = created.UTC()
	}
	return e, nil
}

func profileToRow(p models.Profile) map[string]any {
	return map[string]any{
		"id":               p.ID,
		"email":            p.Email,
		"timezone":         p.Timezone,
		"reminder_hour":    p.ReminderHour,
		"reminder_enabled": p.ReminderEnabled,
		"ai_enabled":       p.AIEnabled,
		"created_at":       p.CreatedAt.Format(time.RFC3339Nano),
	}
}

func rowToProfile(row map[string]any) models.Profile {
	p := models.DefaultProfile(cast.ToString(row["id"]), cast.ToString(row["email"]))
	if tz := cast.ToString(row["timezone"]); tz != "" {
		p.Timezone = tz
	}
	if raw, ok := row["reminder_hour"]; ok && raw != nil {
		p.ReminderHour = cast.ToInt(raw)
	}
	if raw, ok := row["reminder_enabled"]; ok && raw != nil {
		p.ReminderEnabled = cast.ToBool(raw)
	}
	if raw, ok := row["ai_enabled"]; ok && raw != nil {
		p.AIEnabled = cast.ToBool(raw)
	}
	if created, err := cast.ToTimeE(row["created_at"]); err == nil {
		p.CreatedAt = created.UTC()
	}
	return p
}

func isConflict(err error) bool {
	re, ok := err.(*restError)
	return ok && re.Status == http.StatusConflict
}

// parseContentRange reads the total from "0-24/120" or "*/0".
func parseContentRange(v string) (int, error) {
	_, total, ok := strings.Cut(v, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("unexpected content-range %q", v)
	}
	return cast.ToIntE(total)
}
