package services

import (
	"context"
	"errors"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveProfile(t *testing.T, f *fixture, id, tz string, hour int, enabled bool) {
	t.Helper()
	p := models.DefaultProfile(id, id+"@example.com")
	p.Timezone = tz
	p.ReminderHour = hour
	p.ReminderEnabled = enabled
	_, err := f.store.SaveProfile(context.Background(), p)
	require.NoError(t, err)
}

// 18:00 UTC on 2024-06-15 is 03:00 on 2024-06-16 in Tokyo
var reminderNow = time.Date(2024, time.June, 15, 18, 0, 0, 0, time.UTC)

func TestSendDue(t *testing.T) {
	f := newFixture()
	saveProfile(t, f, "alice", "UTC", 18, true)
	saveProfile(t, f, "bob", "Asia/Tokyo", 3, true)
	saveProfile(t, f, "carol", "UTC", 18, true)
	saveProfile(t, f, "dave", "UTC", 9, true)
	saveProfile(t, f, "erin", "UTC", 18, false)

	f.seed(t, "alice", entry(today.AddDays(-1), nil), entry(today.AddDays(-2), nil))
	f.seed(t, "carol", entry(today, nil))
	// bob wrote on his yesterday, which is today in UTC
	f.seed(t, "bob", entry(today, nil))

	sent, err := f.reminders.SendDue(context.Background(), reminderNow)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	mails := f.notifier.SentMail()
	require.Len(t, mails, 2)
	assert.Equal(t, "alice@example.com", mails[0].To)
	assert.Equal(t, "Day 3: what's your good thing today?", mails[0].Subject)
	assert.Contains(t, mails[0].Text, "2-day streak")
	assert.Contains(t, mails[0].Text, "day 3 of your journey")
	assert.Contains(t, mails[0].Text, "https://app.example.com")

	assert.Equal(t, "bob@example.com", mails[1].To)
	assert.Equal(t, "Day 2: what's your good thing today?", mails[1].Subject)

	_, _, reminders := f.metrics.Snapshot()
	assert.Equal(t, 2, reminders["reminder:sent"])
	assert.Equal(t, 1, reminders["reminder:skipped"])
}

func TestSendDue_MailDisabled(t *testing.T) {
	f := newFixture()
	f.notifier.Disabled = true
	saveProfile(t, f, "alice", "UTC", 18, true)

	sent, err := f.reminders.SendDue(context.Background(), reminderNow)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, f.notifier.SentMail())
}

func TestSendDue_SendFailure(t *testing.T) {
	f := newFixture()
	f.notifier.Err = errors.New("smtp down")
	saveProfile(t, f, "alice", "UTC", 18, true)

	sent, err := f.reminders.SendDue(context.Background(), reminderNow)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	_, _, reminders := f.metrics.Snapshot()
	assert.Equal(t, 1, reminders["reminder:failed"])
	assert.Equal(t, 1, f.logger.Count("error"))
}

func TestReminderEmail_NoStreak(t *testing.T) {
	mail := reminderEmail("a@b.c", 0, 0, "")
	assert.Equal(t, "What's your good thing today?", mail.Subject)
	assert.Contains(t, mail.Text, "A moment just for you.")
	assert.Contains(t, mail.Text, "day 1 of your journey")
	assert.NotContains(t, mail.Text, "Write it down")
}

func saveCreated(t *testing.T, f *fixture, id, tz string, created time.Time) {
	t.Helper()
	p := models.DefaultProfile(id, id+"@example.com")
	p.Timezone = tz
	p.CreatedAt = created
	_, err := f.store.SaveProfile(context.Background(), p)
	require.NoError(t, err)
}

func TestSendReengagement(t *testing.T) {
	f := newFixture()
	longAgo := reminderNow.AddDate(0, -3, 0)
	saveCreated(t, f, "fresh", "UTC", reminderNow.AddDate(0, 0, -5))
	saveCreated(t, f, "never", "UTC", reminderNow.AddDate(0, 0, -45))
	saveCreated(t, f, "quiet", "UTC", longAgo)
	saveCreated(t, f, "recent", "UTC", longAgo)
	saveCreated(t, f, "tokyo", "Asia/Tokyo", longAgo)

	f.seed(t, "quiet",
		entry(day(2024, time.May, 16), mood(5)),
		entry(day(2024, time.May, 10), mood(2)),
		entry(day(2024, time.May, 1), nil),
	)
	f.seed(t, "recent", entry(day(2024, time.May, 17), mood(3)))
	// already June 16 in Tokyo, so thirty days have passed
	f.seed(t, "tokyo", entry(day(2024, time.May, 17), mood(4)))

	sent, err := f.reminders.SendReengagement(context.Background(), reminderNow)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	mails := f.notifier.SentMail()
	require.Len(t, mails, 3)
	assert.Equal(t, "never@example.com", mails[0].To)
	assert.Equal(t, "We miss you at OneGoodThing", mails[0].Subject)

	assert.Equal(t, "quiet@example.com", mails[1].To)
	assert.Equal(t, "Remember these good moments?", mails[1].Subject)
	assert.Contains(t, mails[1].Text, "You wrote down 3 good things")
	assert.Contains(t, mails[1].Text, "average mood was 4 out of 5")
	assert.Contains(t, mails[1].Text, "- 2024-05-16: good thing on 2024-05-16")
	assert.NotContains(t, mails[1].Text, "2024-05-10")
	assert.Contains(t, mails[1].Text, "https://app.example.com")

	assert.Equal(t, "tokyo@example.com", mails[2].To)

	_, _, mail := f.metrics.Snapshot()
	assert.Equal(t, 3, mail["reengagement:sent"])
}

func TestSendReengagement_MailDisabled(t *testing.T) {
	f := newFixture()
	f.notifier.Disabled = true
	saveCreated(t, f, "never", "UTC", reminderNow.AddDate(0, -2, 0))

	sent, err := f.reminders.SendReengagement(context.Background(), reminderNow)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestReengagementEmail_FallsBackToNewest(t *testing.T) {
	entries := make([]models.JournalEntry, 0, 60)
	for i := 0; i < 60; i++ {
		entries = append(entries, entry(day(2024, time.May, 1).AddDays(-i), nil))
	}
	entries[55].MoodScore = mood(5)

	mail := reengagementEmail("a@b.c", entries, "")
	assert.Contains(t, mail.Text, "You wrote down 50 good things")
	assert.Contains(t, mail.Text, "average mood was 3 out of 5")
	assert.Contains(t, mail.Text, "2024-05-01")
	assert.Contains(t, mail.Text, "2024-04-29")
	assert.NotContains(t, mail.Text, "2024-04-28")
}

func TestSendFollowups(t *testing.T) {
	f := newFixture()
	weekAgo := reminderNow.AddDate(0, 0, -7).Add(-2 * time.Hour)
	saveCreated(t, f, "week", "UTC", weekAgo)
	saveCreated(t, f, "wrote", "UTC", weekAgo)
	saveCreated(t, f, "six", "UTC", reminderNow.AddDate(0, 0, -6))
	saveCreated(t, f, "nine", "UTC", reminderNow.AddDate(0, 0, -9))
	f.seed(t, "wrote", entry(day(2024, time.June, 9), nil))

	sent, err := f.reminders.SendFollowups(context.Background(), reminderNow)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	mails := f.notifier.SentMail()
	require.Len(t, mails, 1)
	assert.Equal(t, "week@example.com", mails[0].To)
	assert.Equal(t, "Still thinking about your first good thing?", mails[0].Subject)

	_, _, mail := f.metrics.Snapshot()
	assert.Equal(t, 1, mail["followup:sent"])
}

func TestSendWelcome(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.reminders.SendWelcome(context.Background(), models.DefaultProfile("anon", "")))
	assert.Empty(t, f.notifier.SentMail())

	require.NoError(t, f.reminders.SendWelcome(context.Background(), models.DefaultProfile("alice", "alice@example.com")))
	mails := f.notifier.SentMail()
	require.Len(t, mails, 1)
	assert.Equal(t, "Welcome to OneGoodThing", mails[0].Subject)

	_, _, mail := f.metrics.Snapshot()
	assert.Equal(t, 1, mail["welcome:sent"])
}

func TestSendTest(t *testing.T) {
	f := newFixture()
	f.seed(t, "alice", entry(today.AddDays(-1), nil))
	p := models.DefaultProfile("alice", "alice@example.com")

	require.NoError(t, f.reminders.SendTest(context.Background(), p, today))
	mails := f.notifier.SentMail()
	require.Len(t, mails, 1)
	assert.Equal(t, "Your daily OneGoodThing reminder (TEST)", mails[0].Subject)
	assert.Contains(t, mails[0].Text, "1-day streak")

	err := f.reminders.SendTest(context.Background(), models.DefaultProfile("anon", ""), today)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	f.notifier.Disabled = true
	err = f.reminders.SendTest(context.Background(), p, today)
	assert.ErrorIs(t, err, providers.ErrMailDisabled)

	_, _, mail := f.metrics.Snapshot()
	assert.Equal(t, 1, mail["test:sent"])
}
