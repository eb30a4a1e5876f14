package knowledge

import (
	"context"
	"fmt"

	"github.com/aretw0/campusmate/pkg/domain"
)

// DefaultMinMentions is how many distinct users must teach a fact before it is shared.
const DefaultMinMentions = 3

// PromotedBy is recorded as the author of promoted facts.
const PromotedBy = "promotion"

// DefaultPromotions maps personal categories onto the shared category they feed.
func DefaultPromotions() map[string]string {
	return map[string]string{
		"learned_slang_personal":       "slang",
		"my_food_discoveries":          "food_tips",
		"learned_campus_life_personal": "campus_life_hacks",
	}
}

// PromotionReport summarizes one promotion pass.
type PromotionReport struct {
	Candidates int `json:"candidates"`
	Promoted   int `json:"promoted"`
}

type candidate struct {
	target string
	fact   domain.Fact
	users  map[string]struct{}
}

// Promote copies personal facts taught by at least minMentions distinct users into
// their shared category. Facts already shared with the same content are skipped.
func (s *Store) Promote(ctx context.Context, minMentions int) (PromotionReport, error) {
	if minMentions <= 0 {
		minMentions = DefaultMinMentions
	}
	all, err := s.facts.All(ctx)
	if err != nil {
		return PromotionReport{}, fmt.Errorf("failed to read learned facts: %w", err)
	}

	var order []string
	candidates := make(map[string]*candidate)
	for _, rec := range all {
		if rec.Scope.Kind != domain.ScopePersonal {
			continue
		}
		target, ok := s.promotions[rec.Scope.Category]
		if !ok || !s.cats.IsShared(target) {
			continue
		}
		key := target + "\x00" + rec.Fact.Key()
		c, ok := candidates[key]
		if !ok {
			c = &candidate{target: target, fact: rec.Fact, users: make(map[string]struct{})}
			candidates[key] = c
			order = append(order, key)
		}
		c.users[rec.Scope.UserID] = struct{}{}
	}

	report := PromotionReport{Candidates: len(candidates)}
	for _, key := range order {
		c := candidates[key]
		if len(c.users) < minMentions {
			continue
		}
		rec := domain.NewFactRecord(domain.SharedScope(c.target), c.fact, PromotedBy, s.now())
		if s.alreadyShared(rec) {
			continue
		}
		if err := s.facts.Put(ctx, rec); err != nil {
			return report, fmt.Errorf("failed to promote fact into %s: %w", c.target, err)
		}
		s.remember(rec)
		report.Promoted++
		s.logger.Info("promoted fact", "category", c.target, "subject", c.fact.Subject(), "mentions", len(c.users))
	}
	return report, nil
}

func (s *Store) alreadyShared(rec domain.FactRecord) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prev, ok := s.byID[rec.ID]
	return ok && prev.Fact.Key() == rec.Fact.Key()
}
