package models

import (
	"fmt"
	"github.com/gookit/validate"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxEntryTextLength = 500
	MaxTags            = 10
	MaxTagLength       = 40
	MinMoodScore       = 1
	MaxMoodScore       = 5
)

// JournalEntry is one owner's record for a single calendar day.
type JournalEntry struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"userId"`
	EntryDate  Date      `json:"entryDate"`
	Text       string    `json:"entryText"`
	MoodScore  *int      `json:"moodScore"`
	Tags       []string  `json:"tags"`
	Reflection string    `json:"aiReflection,omitempty"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *JournalEntry) HasMood() bool {
	return e.MoodScore != nil
}

// Clone copies the entry including its mood pointer and tag slice.
func (e JournalEntry) Clone() JournalEntry {
	out := e
	if e.MoodScore != nil {
		m := *e.MoodScore
		out.MoodScore = &m
	}
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	return out
}

// EntryInput is the submission payload before it becomes a JournalEntry.
type EntryInput struct {
	EntryText string   `json:"entryText" validate:"required"`
	MoodScore *int     `json:"moodScore"`
	Tags      []string `json:"tags"`
	EntryDate string   `json:"entryDate"`
	PhotoURL  string   `json:"photoUrl" validate:"maxLen:2048"`
}

// Normalize trims and validates the input in place. Tags are trimmed and
// deduplicated keeping their first spelling.
func (in *EntryInput) Normalize() error {
	in.EntryText = strings.TrimSpace(in.EntryText)
	in.EntryDate = strings.TrimSpace(in.EntryDate)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)

	if err := ValidateStruct(in); err != nil {
		return err
	}
	if err := ValidateEntryText(in.EntryText); err != nil {
		return err
	}
	if err := ValidateMood(in.MoodScore); err != nil {
		return err
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return err
	}
	in.Tags = tags
	if in.EntryDate != "" {
		if _, err := ParseDate(in.EntryDate); err != nil {
			return err
		}
	}
	return nil
}

// NewJournalEntry builds an entry from normalized input. An empty input date
// falls back to today.
func NewJournalEntry(ownerID string, in EntryInput, today Date) (JournalEntry, error) {
	if ownerID == "" {
		return JournalEntry{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	date := today
	if in.EntryDate != "" {
		parsed, err := ParseDate(in.EntryDate)
		if err != nil {
			return JournalEntry{}, err
		}
		date = parsed
	}
	if date.IsZero() {
		return JournalEntry{}, fmt.Errorf("%w: entry date is required", ErrInvalidInput)
	}
	entry := JournalEntry{
		OwnerID:   ownerID,
		EntryDate: date,
		Text:      in.EntryText,
		Tags:      in.Tags,
		PhotoURL:  in.PhotoURL,
	}
	if in.MoodScore != nil {
		m := *in.MoodScore
		entry.MoodScore = &m
	}
	return entry, nil
}

func ValidateEntryText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: entryText cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > MaxEntryTextLength {
		return fmt.Errorf("%w: entryText must be at most %d characters", ErrInvalidInput, MaxEntryTextLength)
	}
	return nil
}

func ValidateMood(mood *int) error {
	if mood == nil {
		return nil
	}
	if *mood < MinMoodScore || *mood > MaxMoodScore {
		return fmt.Errorf("%w: moodScore must be between %d and %d", ErrInvalidInput, MinMoodScore, MaxMoodScore)
	}
	return nil
}

func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Errorf("%w: tag %q is longer than %d characters", ErrInvalidInput, tag, MaxTagLength)
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("%w: at most %d tags allowed", ErrInvalidInput, MaxTags)
	}
	return out, nil
}

// ValidateStruct runs the struct tag rules and reports the first violation.
func ValidateStruct(s any) error {
	v := validate.Struct(s)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidInput, v.Errors.One())
	}
	return nil
}
