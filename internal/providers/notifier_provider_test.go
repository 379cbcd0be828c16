package providers

import (
	"context"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"net/http/httptest"
	"onegoodthing/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Disabled(t *testing.T) {
	n := NewNotifier(&structures.Config{}, &cacheTestLogger{})
	assert.False(t, n.Enabled())
	assert.ErrorIs(t, n.Send(context.Background(), Email{To: "a@example.com"}), ErrMailDisabled)
}

func TestNotifier_Send(t *testing.T) {
	var got sendMailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"id":"mail-1"}`))
	}))
	defer srv.Close()

	n := NewNotifier(&structures.Config{Mail: structures.MailConfig{
		Enabled: true,
		APIURL:  srv.URL,
		APIKey:  "re_test",
		From:    "One Good Thing <hello@example.com>",
	}}, &cacheTestLogger{})
	require.True(t, n.Enabled())

	err := n.Send(context.Background(), Email{To: "a@example.com", Subject: "Hi", Text: "Body"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, got.To)
	assert.Equal(t, "One Good Thing <hello@example.com>", got.From)
	assert.Equal(t, "Hi", got.Subject)
}

func TestNotifier_ApiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	n := NewNotifier(&structures.Config{Mail: structures.MailConfig{Enabled: true, APIURL: srv.URL, APIKey: "k", From: "f"}}, &cacheTestLogger{})
	err := n.Send(context.Background(), Email{To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from")
}
