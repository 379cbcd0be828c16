package services

import (
	"context"
	"errors"
	"fmt"
	"onegoodthing/internal/activity"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var ErrNotEnoughEntries = errors.New("not enough entries for this period")

const (
	MinMonthlyEntries  = 3
	maxLifeEntries     = 30
	quoteTemperature   = 0.8
	quoteMaxTokens     = 100
	monthlyThemePrompt = 5
)

const (
	reflectionPrompt = "You are a gentle, encouraging journaling companion. When someone shares something good that happened to them, " +
		"respond with a warm, brief reflection (2-3 sentences max) that acknowledges their moment, celebrates it with them, " +
		"and offers a small insight or affirmation. Be genuine, uplifting, and human. Avoid being overly cheerful or generic."
	reflectionMoodPrompt = "You are a gentle, encouraging journaling companion. When someone shares something good that happened to them, " +
		"respond with: 1) A warm, brief reflection (2-3 sentences max) that acknowledges their moment, celebrates it with them, " +
		"and offers a small insight or affirmation. 2) A mood score from 1-5 based on their entry (1=rough, 2=meh, 3=okay, 4=good, 5=great). " +
		"Be genuine, uplifting, and human. Format: First the reflection, then on a new line \"MOOD: X\" where X is 1-5."
	quotePrompt = "You are a compassionate writer who transforms personal journal entries into beautiful, shareable quotes.\n\n" +
		"Read the user's journal entry and create ONE SHORT, UPLIFTING QUOTE (1-2 sentences max) that captures the essence of their good moment.\n\n" +
		"Guidelines:\n- Keep it under 100 characters if possible\n- Make it positive and inspiring\n- Use \"I\" statements to keep it personal\n" +
		"- Don't add quotation marks\n- Focus on the emotion and meaning, not just restating facts"
	lifePrompt = "You are analyzing someone's journal entries to provide a personalized, accurate reflection of their life right now.\n" +
		"Base everything on the entries provided: mood scores, themes and specific content. Acknowledge positive momentum when the mood " +
		"is improving and challenges with compassion when it is declining. Name specific recurring themes.\n" +
		"Write exactly 2-3 warm sentences. No advice, no diagnosis, no judgment."
	monthlyPrompt = "You are a compassionate life coach analyzing someone's monthly journal entries. Create a warm, personalized monthly " +
		"reflection that celebrates their journey and growth. Reference actual moments from their entries and use a warm, conversational tone."
)

var (
	moodLine      = regexp.MustCompile(`MOOD:\s*(\d)`)
	trailingMood  = regexp.MustCompile(`\s*MOOD:\s*\d\s*$`)
	summaryBlock  = regexp.MustCompile(`(?s)SUMMARY:\s*(.+?)(?:HIGHLIGHTS:|$)`)
	highlightsEnd = regexp.MustCompile(`(?s)HIGHLIGHTS:\s*(.+?)$`)
)

type Reflection struct {
	Reflection string `json:"reflection"`
	MoodScore  *int   `json:"moodScore"`
}

type LifeInsight struct {
	Insight     string   `json:"insight"`
	AverageMood *float64 `json:"averageMood"`
	MoodTrend   string   `json:"moodTrend"`
	EntryCount  int      `json:"entryCount"`
}

type JoyStats struct {
	DaysTracked int     `json:"daysTracked"`
	AvgMood     float64 `json:"avgMood"`
	Positivity  string  `json:"positivity"`
}

type MonthlyReflection struct {
	Summary    string         `json:"summary"`
	Highlights []string       `json:"highlights"`
	Themes     map[string]int `json:"themes"`
	JoyStats   JoyStats       `json:"joyStats"`
}

type InsightServiceInterface interface {
	Enabled() bool
	Reflect(ctx context.Context, text string, mood *int) (Reflection, error)
	Quote(ctx context.Context, text string) (string, error)
	LifeInsight(ctx context.Context, ownerID string, today models.Date) (*LifeInsight, error)
	MonthlyReflection(ctx context.Context, ownerID string, from, to models.Date) (*MonthlyReflection, error)
}

type InsightService struct {
	store      storage.EntryRepository
	completion providers.CompletionProviderInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
	windowDays int
}

func NewInsightService(conf *structures.Config, store storage.Store, completion providers.CompletionProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) InsightServiceInterface {
	days := conf.App.InsightDays
	if days <= 0 {
		days = 30
	}
	return &InsightService{
		store:      store,
		completion: completion,
		metrics:    metrics,
		logger:     logger,
		windowDays: days,
	}
}

func (is *InsightService) Enabled() bool {
	return is.completion.Enabled()
}

// Reflect asks for a short reflection on the entry. Without a mood the model
// also scores one, read from a trailing "MOOD: X" line.
func (is *InsightService) Reflect(ctx context.Context, text string, mood *int) (Reflection, error) {
	text = strings.TrimSpace(text)
	if err := models.ValidateEntryText(text); err != nil {
		return Reflection{}, err
	}
	if err := models.ValidateMood(mood); err != nil {
		return Reflection{}, err
	}

	system := reflectionPrompt
	if mood == nil {
		system = reflectionMoodPrompt
	}
	reply, err := is.complete(ctx, "reflection", providers.CompletionRequest{
		System: system,
		User:   "Today's good thing: " + text,
	})
	if err != nil {
		return Reflection{}, err
	}

	out := Reflection{Reflection: strings.TrimSpace(reply)}
	if mood != nil {
		m := *mood
		out.MoodScore = &m
		return out, nil
	}
	out.Reflection, out.MoodScore = splitMood(reply)
	return out, nil
}

func (is *InsightService) Quote(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if err := models.ValidateEntryText(text); err != nil {
		return "", err
	}
	reply, err := is.complete(ctx, "quote", providers.CompletionRequest{
		System:      quotePrompt,
		User:        text,
		Temperature: quoteTemperature,
		MaxTokens:   quoteMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(reply), "\"“”"), nil
}

// LifeInsight reads at most 30 of the most recent days in the trailing window.
// It returns nil when the window holds no entries.
func (is *InsightService) LifeInsight(ctx context.Context, ownerID string, today models.Date) (*LifeInsight, error) {
	from, to := activity.TrailingWindow(today, is.windowDays)
	entries, err := is.store.ListEntries(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	days := activity.Dedupe(entries)
	if len(days) == 0 {
		return nil, nil
	}
	if len(days) > maxLifeEntries {
		days = days[:maxLifeEntries]
	}

	avg := activity.AverageMood(days)
	trend := activity.MoodTrend(days)
	tracked := 0
	var sb strings.Builder
	for _, e := range days {
		if e.MoodScore != nil {
			tracked++
		}
		fmt.Fprintf(&sb, "%s: %q [mood: %s]\n", e.EntryDate, e.Text, moodLabel(e.MoodScore))
	}
	if avg != nil {
		fmt.Fprintf(&sb, "\nMood Statistics:\n- Average mood: %.1f/5\n- Trend: %s\n- Total entries tracked: %d\n", *avg, trend, tracked)
	} else {
		sb.WriteString("\nNote: User has not tracked moods yet, focus on entry content themes.\n")
	}

	reply, err := is.complete(ctx, "life", providers.CompletionRequest{
		System: lifePrompt,
		User: "Analyze these recent journal entries and provide a personalized reflection:\n\n" + sb.String() +
			"\nProvide your warm, insightful reflection (2-3 sentences only):",
	})
	if err != nil {
		return nil, err
	}
	if avg != nil {
		rounded := activity.RoundTo(*avg, 1)
		avg = &rounded
	}
	return &LifeInsight{
		Insight:     strings.TrimSpace(reply),
		AverageMood: avg,
		MoodTrend:   trend,
		EntryCount:  len(days),
	}, nil
}

func (is *InsightService) MonthlyReflection(ctx context.Context, ownerID string, from, to models.Date) (*MonthlyReflection, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("%w: monthStart must not be after monthEnd", models.ErrInvalidInput)
	}
	entries, err := is.store.ListEntries(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	days := activity.Dedupe(entries)
	if len(days) < MinMonthlyEntries {
		return nil, ErrNotEnoughEntries
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].EntryDate.Before(days[j].EntryDate)
	})

	themes := make(map[string]int)
	for _, e := range days {
		for _, tag := range e.Tags {
			themes[tag]++
		}
	}
	// untracked months score 0 and read as "Growing"
	raw := 0.0
	if avg := activity.AverageMood(days); avg != nil {
		raw = *avg
	}
	stats := JoyStats{
		DaysTracked: len(days),
		AvgMood:     activity.RoundTo(raw, 1),
		Positivity:  activity.PositivityLabel(&raw),
	}

	var sb strings.Builder
	sb.WriteString("Here are the journal entries for this month:\n\n")
	for _, e := range days {
		sb.WriteString(e.EntryDate.String() + ": " + e.Text)
		if e.MoodScore != nil {
			fmt.Fprintf(&sb, " (mood: %d/5)", *e.MoodScore)
		}
		sb.WriteByte('\n')
	}
	top := activity.TopThemes(days, monthlyThemePrompt)
	themeText := "None tagged"
	if len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, t := range top {
			parts = append(parts, t.Tag+" ("+strconv.Itoa(t.Count)+" times)")
		}
		themeText = strings.Join(parts, ", ")
	}
	fmt.Fprintf(&sb, "\nStatistics:\n- Days tracked: %d\n- Average mood: %.1f/5\n- Top themes: %s\n\n", stats.DaysTracked, stats.AvgMood, themeText)
	sb.WriteString("Format your response as:\nSUMMARY: [Your warm 3-4 sentence summary]\nHIGHLIGHTS:\n- [Highlight 1]\n- [Highlight 2]\n- [Highlight 3]\n")

	reply, err := is.complete(ctx, "monthly", providers.CompletionRequest{
		System: monthlyPrompt,
		User:   sb.String(),
	})
	if err != nil {
		return nil, err
	}
	summary, highlights := splitMonthly(reply)
	return &MonthlyReflection{
		Summary:    summary,
		Highlights: highlights,
		Themes:     themes,
		JoyStats:   stats,
	}, nil
}

func (is *InsightService) complete(ctx context.Context, kind string, req providers.CompletionRequest) (string, error) {
	reply, err := is.completion.Complete(ctx, req)
	is.metrics.IncAIRequests(kind, outcomeOf(err))
	if err != nil {
		is.logger.Warnf(providers.TypeAI, "%s completion failed: %v", kind, err)
		return "", err
	}
	is.logger.Debugf(providers.TypeAI, "%s completion ok (%d chars)", kind, len(reply))
	return reply, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, providers.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, providers.ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, providers.ErrAIDisabled):
		return "disabled"
	default:
		return "error"
	}
}

// splitMood removes a trailing mood line. Scores outside 1..5 are ignored.
func splitMood(reply string) (string, *int) {
	m := moodLine.FindStringSubmatch(reply)
	if m == nil {
		return strings.TrimSpace(reply), nil
	}
	text := strings.TrimSpace(trailingMood.ReplaceAllString(reply, ""))
	score, err := strconv.Atoi(m[1])
	if err != nil || models.ValidateMood(&score) != nil {
		return text, nil
	}
	return text, &score
}

// splitMonthly reads the SUMMARY and HIGHLIGHTS sections. A reply without
// markers is used whole as the summary.
func splitMonthly(reply string) (string, []string) {
	summary := strings.TrimSpace(reply)
	if m := summaryBlock.FindStringSubmatch(reply); m != nil {
		summary = strings.TrimSpace(m[1])
	}
	highlights := []string{}
	if m := highlightsEnd.FindStringSubmatch(reply); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "-") {
				continue
			}
			if h := strings.TrimSpace(strings.TrimPrefix(line, "-")); h != "" {
				highlights = append(highlights, h)
			}
		}
	}
	return summary, highlights
}

func moodLabel(mood *int) string {
	if mood == nil {
		return "not tracked"
	}
	switch *mood {
	case 1:
		return "rough/struggling"
	case 2:
		return "meh/low"
	case 3:
		return "okay/neutral"
	case 4:
		return "good/positive"
	case 5:
		return "great/joyful"
	}
	return "not tracked"
}
