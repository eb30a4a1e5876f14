package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filters narrows a static knowledge lookup. Recognised keys are term, location and topic.
type Filters map[string]string

// Fact is something a user taught the assistant: either a question/answer pair or
// a topic with free-form information.
type Fact struct {
	Question    string `json:"question,omitempty" mapstructure:"question"`
	Answer      string `json:"answer,omitempty" mapstructure:"answer"`
	Topic       string `json:"topic,omitempty" mapstructure:"topic"`
	Information string `json:"information,omitempty" mapstructure:"information"`
}

// IsQA reports whether the fact is a question/answer pair.
func (f Fact) IsQA() bool {
	return strings.TrimSpace(f.Question) != "" && strings.TrimSpace(f.Answer) != ""
}

// IsInfo reports whether the fact is a topic/information pair.
func (f Fact) IsInfo() bool {
	return strings.TrimSpace(f.Topic) != "" && strings.TrimSpace(f.Information) != ""
}

// Subject identifies what the fact is about. Teaching the same subject again replaces the content.
func (f Fact) Subject() string {
	if f.IsQA() {
		return "qa:" + fold(f.Question)
	}
	return "info:" + fold(f.Topic)
}

// Key identifies equal facts regardless of who taught them.
func (f Fact) Key() string {
	if f.IsQA() {
		return f.Subject() + "\x00" + fold(f.Answer)
	}
	return f.Subject() + "\x00" + fold(f.Information)
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ScopeKind separates a user's own notes from knowledge shared by everyone.
type ScopeKind string

const (
	ScopePersonal ScopeKind = "personal"
	ScopeShared   ScopeKind = "shared"
)

// FactScope addresses one learned knowledge partition.
type FactScope struct {
	Kind     ScopeKind `json:"kind"`
	UserID   string    `json:"user_id,omitempty"` // Empty for shared scopes
	Category string    `json:"category"`
}

// FactRecord is a stored fact.
type FactRecord struct {
	ID        string    `json:"id"`
	Scope     FactScope `json:"scope"`
	Fact      Fact      `json:"fact"`
	TaughtBy  string    `json:"taught_by"`
	CreatedAt time.Time `json:"created_at"`
}

// String renders the scope as kind/user/category.
func (s FactScope) String() string {
	return string(s.Kind) + "/" + s.UserID + "/" + s.Category
}

// PersonalScope addresses one user's notes in category.
func PersonalScope(userID, category string) FactScope {
	return FactScope{Kind: ScopePersonal, UserID: userID, Category: category}
}

// SharedScope addresses knowledge shared by everyone in category.
func SharedScope(category string) FactScope {
	return FactScope{Kind: ScopeShared, Category: category}
}

// NewFactRecord builds a record whose ID is derived from scope and subject,
// so storing the same subject twice in one scope overwrites it.
func NewFactRecord(scope FactScope, fact Fact, taughtBy string, at time.Time) FactRecord {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(scope.String()+"\x00"+fact.Subject()))
	return FactRecord{
		ID:        "fact_" + strings.ReplaceAll(id.String(), "-", "")[:16],
		Scope:     scope,
		Fact:      fact,
		TaughtBy:  taughtBy,
		CreatedAt: at,
	}
}

// Categories is the fixed category space known at startup.
type Categories struct {
	Static   []string `json:"static" yaml:"static"`
	Shared   []string `json:"shared" yaml:"shared"`
	Personal []string `json:"personal" yaml:"personal"`
}

// DefaultPersonalCategory receives facts taught under an unsupported personal category.
const DefaultPersonalCategory = "my_notes"

// DefaultCategories returns the built-in category space.
func DefaultCategories() Categories {
	return Categories{
		Static:   []string{"slang", "food", "campus_info"},
		Shared:   []string{"slang", "food_tips", "campus_life_hacks", "event_info"},
		Personal: []string{"my_notes", "my_preferences", "reminders", "learned_slang_personal", "my_food_discoveries", "learned_campus_life_personal"},
	}
}

func (c Categories) IsStatic(name string) bool   { return slices.Contains(c.Static, name) }
func (c Categories) IsShared(name string) bool   { return slices.Contains(c.Shared, name) }
func (c Categories) IsPersonal(name string) bool { return slices.Contains(c.Personal, name) }

// Learnable reports whether facts can be stored or searched under name.
func (c Categories) Learnable(name string) bool {
	return c.IsShared(name) || c.IsPersonal(name)
}
