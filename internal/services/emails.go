package services

import (
	"fmt"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"strings"
)

// mail kinds, used as the metrics label
const (
	mailReminder     = "reminder"
	mailReengagement = "reengagement"
	mailFollowup     = "followup"
	mailWelcome      = "welcome"
	mailTest         = "test"
)

const testReminderSubject = "Your daily OneGoodThing reminder (TEST)"

func reminderEmail(to string, streak, totalDays int, appURL string) providers.Email {
	subject := "What's your good thing today?"
	var body strings.Builder
	if streak > 0 {
		subject = fmt.Sprintf("Day %d: what's your good thing today?", streak+1)
		fmt.Fprintf(&body, "%d-day streak. You're on a roll.\n\n", streak)
	} else {
		body.WriteString("A moment just for you.\n\n")
	}
	fmt.Fprintf(&body, "Today is day %d of your journey.\n", totalDays+1)
	body.WriteString("What made you smile today?\n")
	writeLink(&body, "Write it down", appURL)
	return providers.Email{To: to, Subject: subject, Text: body.String()}
}

// reengagementEmail reads at most the recentEntriesLimit newest entries.
// entries must be newest first.
func reengagementEmail(to string, entries []models.JournalEntry, appURL string) providers.Email {
	if len(entries) > recentEntriesLimit {
		entries = entries[:recentEntriesLimit]
	}
	var body strings.Builder
	if len(entries) == 0 {
		body.WriteString("It's been a while. One small good thing a day is all it takes.\n")
		writeLink(&body, "Come back", appURL)
		return providers.Email{To: to, Subject: "We miss you at OneGoodThing", Text: body.String()}
	}

	fmt.Fprintf(&body, "You wrote down %d good things. Your average mood was %d out of %d.\n\n",
		len(entries), roundedMood(entries), models.MaxMoodScore)
	body.WriteString("A few moments worth remembering:\n")
	for _, e := range bestMoments(entries) {
		fmt.Fprintf(&body, "- %s: %s\n", e.EntryDate, e.Text)
	}
	writeLink(&body, "Add today's good thing", appURL)
	return providers.Email{To: to, Subject: "Remember these good moments?", Text: body.String()}
}

func followupEmail(to, appURL string) providers.Email {
	var body strings.Builder
	body.WriteString("You signed up a week ago but haven't written your first entry yet.\n\n")
	body.WriteString("It doesn't have to be big. A good coffee, a kind word, a walk in the sun.\n")
	body.WriteString("Your streak begins with one moment.\n")
	writeLink(&body, "Write your first entry", appURL)
	return providers.Email{To: to, Subject: "Still thinking about your first good thing?", Text: body.String()}
}

func welcomeEmail(to, appURL string) providers.Email {
	var body strings.Builder
	body.WriteString("Welcome to OneGoodThing.\n\n")
	body.WriteString("Each day, write down one good thing. It takes a minute.\n")
	body.WriteString("Over time you'll see your streaks, your moods and the themes that make you happy.\n")
	writeLink(&body, "Write your first entry", appURL)
	return providers.Email{To: to, Subject: "Welcome to OneGoodThing", Text: body.String()}
}

// roundedMood is 3 when no entry tracks a mood.
func roundedMood(entries []models.JournalEntry) int {
	sum, n := 0, 0
	for i := range entries {
		if entries[i].HasMood() {
			sum += *entries[i].MoodScore
			n++
		}
	}
	if n == 0 {
		return 3
	}
	return (2*sum + n) / (2 * n)
}

// bestMoments prefers the newest entries rated 4 or better and falls back
// to the newest entries.
func bestMoments(entries []models.JournalEntry) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, bestMomentsCount)
	for i := range entries {
		if entries[i].HasMood() && *entries[i].MoodScore >= 4 {
			out = append(out, entries[i])
			if len(out) == bestMomentsCount {
				return out
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	if len(entries) > bestMomentsCount {
		entries = entries[:bestMomentsCount]
	}
	return append(out, entries...)
}

func writeLink(body *strings.Builder, label, appURL string) {
	if appURL != "" {
		fmt.Fprintf(body, "\n%s: %s\n", label, appURL)
	}
}
