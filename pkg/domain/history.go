package domain

import (
	"strings"
	"time"
)

// Turn is one exchange of a conversation.
type Turn struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	At        time.Time `json:"at"`
}

// FormatHistory renders turns oldest first for the planner prompt.
func FormatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("用户: ")
		b.WriteString(t.User)
		b.WriteString("\n学姐: ")
		b.WriteString(t.Assistant)
	}
	return b.String()
}
