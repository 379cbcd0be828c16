package testutil

import (
	"context"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Close() { m.Closed = true }

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockCompletion implements providers.CompletionProviderInterface. Replies
// are consumed in order; the last one repeats.
type MockCompletion struct {
	mu       sync.Mutex
	Replies  []string
	Err      error
	Disabled bool
	Calls    []providers.CompletionRequest
}

func (m *MockCompletion) Complete(_ context.Context, req providers.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Disabled {
		return "", providers.ErrAIDisabled
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		return "", providers.ErrEmptyCompletion
	}
	reply := m.Replies[0]
	if len(m.Replies) > 1 {
		m.Replies = m.Replies[1:]
	}
	return reply, nil
}

func (m *MockCompletion) Enabled() bool { return !m.Disabled }

func (m *MockCompletion) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockNotifier implements providers.NotifierInterface.
type MockNotifier struct {
	mu       sync.Mutex
	Sent     []providers.Email
	Err      error
	Disabled bool
}

func (m *MockNotifier) Send(_ context.Context, mail providers.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Disabled {
		return providers.ErrMailDisabled
	}
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, mail)
	return nil
}

func (m *MockNotifier) Enabled() bool { return !m.Disabled }

func (m *MockNotifier) SentMail() []providers.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]providers.Email(nil), m.Sent...)
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu             sync.Mutex
	CacheHits      int
	CacheMisses    int
	Persisted      int
	EntriesTotal   int
	EntriesCreated int
	AIRequests     map[string]int
	MailSent       map[string]int
	Requests       map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{AIRequests: make(map[string]int), MailSent: make(map[string]int), Requests: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(string, time.Duration) {}

func (m *MockMetrics) RequestsFor(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Requests[endpoint]
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) SetEntriesTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesTotal = count
}

func (m *MockMetrics) IncEntriesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesCreated++
}

func (m *MockMetrics) IncAIRequests(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIRequests[kind+":"+outcome]++
}

func (m *MockMetrics) IncMailSent(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailSent[kind+":"+outcome]++
}

func (m *MockMetrics) PersistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Persisted
}

func (m *MockMetrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.EntriesTotal
}

func (m *MockMetrics) Snapshot() (created int, ai map[string]int, mail map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ai = make(map[string]int, len(m.AIRequests))
	for k, v := range m.AIRequests {
		ai[k] = v
	}
	mail = make(map[string]int, len(m.MailSent))
	for k, v := range m.MailSent {
		mail[k] = v
	}
	return m.EntriesCreated, ai, mail
}

// Count reports how many records were logged at the given level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockReminders stands in for the reminder service in scheduler tests.
// Kinds records which method ran for each entry of Calls.
type MockReminders struct {
	mu    sync.Mutex
	Sent  int
	Err   error
	Calls []time.Time
	Kinds []string
}

func (m *MockReminders) record(kind string, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, now)
	m.Kinds = append(m.Kinds, kind)
	return m.Sent, m.Err
}

func (m *MockReminders) SendDue(_ context.Context, now time.Time) (int, error) {
	return m.record("due", now)
}

func (m *MockReminders) SendReengagement(_ context.Context, now time.Time) (int, error) {
	return m.record("reengagement", now)
}

func (m *MockReminders) SendFollowups(_ context.Context, now time.Time) (int, error) {
	return m.record("followup", now)
}

func (m *MockReminders) SendWelcome(_ context.Context, _ models.Profile) error {
	_, err := m.record("welcome", time.Time{})
	return err
}

func (m *MockReminders) SendTest(_ context.Context, _ models.Profile, _ models.Date) error {
	_, err := m.record("test", time.Time{})
	return err
}

func (m *MockReminders) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
