package activity

type Milestone struct {
	Days   int    `json:"days"`
	Label  string `json:"label"`
	Latest bool   `json:"latest"`
}

var streakMilestones = []Milestone{
	{Days: 3, Label: "3 Day Streak!"},
	{Days: 7, Label: "Week Warrior!"},
	{Days: 14, Label: "Two Weeks!"},
	{Days: 30, Label: "Month Master!"},
}

// Milestones lists every milestone reached by the streak, lowest first.
// The highest one is flagged as latest.
func Milestones(streak int) []Milestone {
	out := make([]Milestone, 0, len(streakMilestones))
	for _, m := range streakMilestones {
		if streak >= m.Days {
			out = append(out, m)
		}
	}
	if len(out) > 0 {
		out[len(out)-1].Latest = true
	}
	return out
}

// NextMilestone returns the first milestone above the streak, if any.
func NextMilestone(streak int) (Milestone, bool) {
	for _, m := range streakMilestones {
		if streak < m.Days {
			return m, true
		}
	}
	return Milestone{}, false
}
