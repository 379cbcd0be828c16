package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_GetDefaults(t *testing.T) {
	h := newHarness(testNow)
	rr := serve(h.profile.Get, request(http.MethodGet, "/api/profile", "", &alice))
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	decode(t, rr, &got)
	assert.Equal(t, "UTC", got["timezone"])
	assert.Equal(t, float64(20), got["reminderHour"])
	assert.Equal(t, true, got["aiEnabled"])
	assert.Equal(t, "alice@example.com", got["email"])
}

func TestProfile_Update(t *testing.T) {
	h := newHarness(testNow)
	rr := serve(h.profile.Update, request(http.MethodPost, "/api/profile",
		`{"timezone":"Europe/Paris","reminderHour":9,"reminderEnabled":true,"aiEnabled":false}`, &alice))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(h.profile.Get, request(http.MethodGet, "/api/profile", "", &alice))
	var got map[string]any
	decode(t, rr, &got)
	assert.Equal(t, "Europe/Paris", got["timezone"])
	assert.Equal(t, float64(9), got["reminderHour"])
	assert.Equal(t, false, got["aiEnabled"])
}

func TestProfile_FirstSaveSendsWelcome(t *testing.T) {
	h := newHarness(testNow)
	rr := serve(h.profile.Update, request(http.MethodPost, "/api/profile", `{"timezone":"UTC","reminderHour":9}`, &alice))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = serve(h.profile.Update, request(http.MethodPost, "/api/profile", `{"timezone":"UTC","reminderHour":10}`, &alice))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	mails := h.notifier.SentMail()
	require.Len(t, mails, 1)
	assert.Equal(t, "alice@example.com", mails[0].To)
	assert.Equal(t, "Welcome to OneGoodThing", mails[0].Subject)
}

func TestProfile_WelcomeFailureStillSaves(t *testing.T) {
	h := newHarness(testNow)
	h.notifier.Err = errors.New("mail down")
	rr := serve(h.profile.Update, request(http.MethodPost, "/api/profile", `{"timezone":"Europe/Paris","reminderHour":9}`, &alice))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p, err := h.store.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", p.Timezone)
}

func TestProfile_UpdateInvalid(t *testing.T) {
	h := newHarness(testNow)
	rr := serve(h.profile.Update, request(http.MethodPost, "/api/profile", `{"timezone":"Moon/Base","reminderHour":9}`, &alice))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorOf(t, rr), "Moon/Base")
}
