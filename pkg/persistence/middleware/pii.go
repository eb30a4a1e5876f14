package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// Mask replaces every value whose key matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the patterns.
// Session metadata and the arguments of every planned and executed step are masked;
// the in-memory session is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, s *domain.Session) error {
	cloned := s.Clone()
	cloned.Metadata = deepCopyMap(cloned.Metadata)
	maskMap(cloned.Metadata, m.patterns)

	if cloned.Plan != nil {
		for i := range cloned.Plan.Steps {
			cloned.Plan.Steps[i].Task.Args = m.masked(cloned.Plan.Steps[i].Task.Args)
		}
	}
	for i := range cloned.StepResults {
		rec := &cloned.StepResults[i]
		rec.Task.Args = m.masked(rec.Task.Args)
		if data, ok := rec.Result.Data.(map[string]any); ok {
			rec.Result.Data = m.masked(data)
		}
	}

	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) masked(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := deepCopyMap(args)
	maskMap(out, m.patterns)
	return out
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !masked {
			maskMap(sub, patterns)
		}
	}
}
