package profile

import "time"

// Profile is the durable, cross-session record of what the coach knows
// about one golfer's game. GolferID is immutable once assigned.
type Profile struct {
	GolferID         string    `json:"golfer_id"`
	SkillLevel       string    `json:"skill_level,omitempty"`
	SwingIssues      []string  `json:"swing_issues"`
	Goals            []string  `json:"goals"`
	InteractionCount int       `json:"interaction_count"`
	LastMessage      string    `json:"last_message,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Delta is a partial profile update proposed by the extractor. Set-valued
// fields are unioned into the stored profile; SkillLevel overwrites when
// non-empty (a newer explicit statement supersedes the old value).
type Delta struct {
	SkillLevel  string   `json:"skill_level"`
	SwingIssues []string `json:"swing_issues"`
	Goals       []string `json:"goals"`
}

// Empty reports whether the delta carries no update.
func (d Delta) Empty() bool {
	return d.SkillLevel == "" && len(d.SwingIssues) == 0 && len(d.Goals) == 0
}
