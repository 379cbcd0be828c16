package services

import (
	"onegoodthing/internal/models"
	"onegoodthing/internal/structures"
	"strings"
	"time"
)

// DayResolver decides which calendar day is "today" for a viewer.
// Precedence: explicit zone from the request, then the profile zone,
// then the configured default.
type DayResolver struct {
	now      func() time.Time
	fallback *time.Location
}

func NewDayResolver(conf *structures.Config) *DayResolver {
	loc, err := time.LoadLocation(conf.App.DefaultTimezone)
	if err != nil || conf.App.DefaultTimezone == "" {
		loc = time.UTC
	}
	return &DayResolver{now: time.Now, fallback: loc}
}

// WithClock replaces the time source.
func (d *DayResolver) WithClock(now func() time.Time) *DayResolver {
	d.now = now
	return d
}

func (d *DayResolver) Now() time.Time {
	return d.now()
}

// Location returns the first zone in precedence order that loads.
func (d *DayResolver) Location(requested string, profile models.Profile) *time.Location {
	if requested = strings.TrimSpace(requested); requested != "" {
		if loc, err := time.LoadLocation(requested); err == nil {
			return loc
		}
	}
	if profile.Timezone != "" {
		if loc, err := profile.Location(); err == nil {
			return loc
		}
	}
	return d.fallback
}

func (d *DayResolver) Today(requested string, profile models.Profile) models.Date {
	return models.DateIn(d.now(), d.Location(requested, profile))
}
