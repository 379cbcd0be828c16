package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultTimezone     = "UTC"
	DefaultReminderHour = 20
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Timezone        string    `json:"timezone"`
	ReminderHour    int       `json:"reminderHour"`
	ReminderEnabled bool      `json:"reminderEnabled"`
	AIEnabled       bool      `json:"aiEnabled"`
	CreatedAt       time.Time `json:"createdAt"`
}

func DefaultProfile(id, email string) Profile {
	return Profile{
		ID:              id,
		Email:           email,
		Timezone:        DefaultTimezone,
		ReminderHour:    DefaultReminderHour,
		ReminderEnabled: true,
		AIEnabled:       true,
	}
}

// Location falls back to UTC for an empty timezone.
func (p Profile) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.Timezone)
}

type ProfileInput struct {
	Timezone        string `json:"timezone" validate:"required"`
	ReminderHour    int    `json:"reminderHour" validate:"min:0|max:23"`
	ReminderEnabled bool   `json:"reminderEnabled"`
	AIEnabled       bool   `json:"aiEnabled"`
}

func (in *ProfileInput) Normalize() error {
	in.Timezone = strings.TrimSpace(in.Timezone)
	if err := ValidateStruct(in); err != nil {
		return err
	}
	if in.ReminderHour < 0 || in.ReminderHour > 23 {
		return fmt.Errorf("%w: reminderHour must be between 0 and 23", ErrInvalidInput)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, in.Timezone)
	}
	return nil
}

func (p Profile) Apply(in ProfileInput) Profile {
	p.Timezone = in.Timezone
	p.ReminderHour = in.ReminderHour
	p.ReminderEnabled = in.ReminderEnabled
	p.AIEnabled = in.AIEnabled
	return p
}
