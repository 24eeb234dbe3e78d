package entity

// Milestone is a certificate tier unlocked by a number of resolved reports.
type Milestone struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

var Milestones = []Milestone{
	{Level: 10, Title: "Civic Champion"},
	{Level: 15, Title: "City Guardian"},
}

type MilestoneStatus struct {
	Milestone
	Unlocked  bool `json:"unlocked"`
	Remaining int  `json:"remaining"`
}

type AchievementSummary struct {
	User          *Profile          `json:"user,omitempty"`
	ResolvedCount int64             `json:"resolvedCount"`
	BadgeCount    int               `json:"badgeCount"`
	Milestones    []MilestoneStatus `json:"milestones"`
}
