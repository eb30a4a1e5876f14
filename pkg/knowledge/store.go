package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// Sources reported on learned knowledge results.
const (
	SourcePersonal = "personal_kb"
	SourceShared   = "shared_kb"
)

// ReasonStoreUnavailable marks results produced when the fact store failed.
const ReasonStoreUnavailable = "store_unavailable"

// Store implements ports.KnowledgeStore.
type Store struct {
	mu     sync.RWMutex
	static *Static
	byID   map[string]domain.FactRecord

	facts      ports.FactStore
	index      *factIndex
	cats       domain.Categories
	promotions map[string]string
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithStatic replaces the embedded static knowledge.
func WithStatic(s *Static) Option {
	return func(st *Store) {
		if s != nil {
			st.static = s
		}
	}
}

// WithFacts sets the learned fact backend. Defaults to MemoryFacts.
func WithFacts(f ports.FactStore) Option {
	return func(st *Store) {
		st.facts = f
	}
}

// WithCategories overrides the category space.
func WithCategories(c domain.Categories) Option {
	return func(st *Store) {
		st.cats = c
	}
}

// WithPromotions sets which personal category feeds which shared category.
func WithPromotions(routes map[string]string) Option {
	return func(st *Store) {
		st.promotions = routes
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(st *Store) {
		st.logger = logger
	}
}

// WithClock overrides the time source used to stamp facts.
func WithClock(now func() time.Time) Option {
	return func(st *Store) {
		st.now = now
	}
}

// New creates a Store and indexes the facts already present in the backend.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	s := &Store{
		byID:       make(map[string]domain.FactRecord),
		cats:       domain.DefaultCategories(),
		promotions: DefaultPromotions(),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.static == nil {
		s.static = DefaultStatic()
	}
	if s.facts == nil {
		s.facts = NewMemoryFacts()
	}

	idx, err := newFactIndex()
	if err != nil {
		return nil, err
	}
	s.index = idx

	existing, err := s.facts.All(ctx)
	if err != nil {
		idx.close()
		return nil, fmt.Errorf("failed to load learned facts: %w", err)
	}
	for _, rec := range existing {
		s.remember(rec)
	}
	s.logger.Debug("knowledge store ready", "facts", len(existing))
	return s, nil
}

// Close releases the search index.
func (s *Store) Close() error {
	return s.index.close()
}

func (s *Store) Categories() domain.Categories { return s.cats }

// SetStatic swaps the static knowledge atomically.
func (s *Store) SetStatic(st *Static) {
	s.mu.Lock()
	s.static = st
	s.mu.Unlock()
}

// Reload replaces the static knowledge with the contents of path.
// The current data stays in place when the file is invalid.
func (s *Store) Reload(path string) error {
	st, err := LoadStatic(path)
	if err != nil {
		return err
	}
	s.SetStatic(st)
	s.logger.Info("static knowledge reloaded", "path", path, "slang", len(st.Slang), "food", len(st.Food), "campus_info", len(st.CampusInfo))
	return nil
}

func (s *Store) Lookup(ctx context.Context, category string, filters domain.Filters) domain.ToolResult {
	if !s.cats.IsStatic(category) {
		return domain.Errored("unsupported_category", fmt.Sprintf("学姐的官方资料库里暂时还不支持查询“%s”这类信息哦。", category))
	}
	s.mu.RLock()
	st := s.static
	s.mu.RUnlock()
	return st.lookup(category, filters)
}

func (s *Store) Learn(ctx context.Context, userID, category string, fact domain.Fact) domain.ToolResult {
	if strings.TrimSpace(userID) == "" {
		return domain.Failure(domain.ReasonMissingUserID, "学姐需要知道这是为谁记笔记哦！")
	}
	if !fact.IsQA() && !fact.IsInfo() {
		return domain.Failure("missing_fact", "你想教给学姐什么新知识呢？需要告诉我主题和信息，或者具体的问题和答案哦。")
	}
	if !s.cats.IsPersonal(category) {
		s.logger.Warn("unsupported personal category, using default", "category", category, "default", domain.DefaultPersonalCategory)
		category = domain.DefaultPersonalCategory
	}

	rec := domain.NewFactRecord(domain.PersonalScope(userID, category), trimFact(fact), userID, s.now())
	if err := s.facts.Put(ctx, rec); err != nil {
		s.logger.Error("failed to store learned fact", "user_id", userID, "category", category, "err", err)
		return domain.Errored(ReasonStoreUnavailable, "学姐的小本本暂时打不开了，等会儿再教我一次好不好？")
	}
	s.remember(rec)
	s.logger.Info("learned fact", "user_id", userID, "category", category, "subject", rec.Fact.Subject())

	return domain.Success(fmt.Sprintf("好嘞，学姐已经在你的个人小本本上记下关于“%s”的这个信息啦！如果很多人都教我类似的内容，我说不定能把它变成通用知识哦。", category)).From(SourcePersonal)
}

func (s *Store) SearchLearned(ctx context.Context, userID, category, query string) domain.ToolResult {
	if !s.cats.Learnable(category) {
		return domain.Errored(domain.ReasonInvalidCategory, fmt.Sprintf(
			"学姐不太确定“%s”类别里有没有可以学习或查询的笔记呢。你可以试试这些类别：个人笔记%v，共享知识%v。",
			category, s.cats.Personal, s.cats.Shared))
	}

	var scopes []domain.FactScope
	if s.cats.IsPersonal(category) && userID != "" {
		scopes = append(scopes, domain.PersonalScope(userID, category))
	}
	if s.cats.IsShared(category) {
		scopes = append(scopes, domain.SharedScope(category))
	}

	for _, scope := range scopes {
		recs, err := s.facts.List(ctx, scope)
		if err != nil {
			s.logger.Error("failed to list learned facts", "scope", scope.String(), "err", err)
			return domain.Errored(ReasonStoreUnavailable, "学姐的小本本暂时打不开了，请稍后再问我吧。")
		}
		if text, ok := matchFacts(recs, query); ok {
			return domain.Success(text).From(sourceOf(scope))
		}
	}

	if rec, ok := s.searchIndex(query, scopes); ok {
		return domain.Success(describe(rec)).From(sourceOf(rec.Scope))
	}

	personal, shared := s.cats.IsPersonal(category), s.cats.IsShared(category)
	switch {
	case personal && shared:
		return domain.NotFound(fmt.Sprintf("关于“%s”，学姐的个人笔记、共享笔记和官方资料里都没有找到相关信息呢。(在 '%s' 类别里哦)", query, category))
	case personal:
		return domain.NotFound(fmt.Sprintf("在你的专属小本本里，学姐暂时没有找到关于“%s”的信息哦。是不是还没教过我呀？", query))
	default:
		return domain.NotFound(fmt.Sprintf("学姐翻了翻大家的共享笔记，暂时没有找到和你问题“%s”直接相关的信息呢。也许还没人教过我这个？", query))
	}
}

// matchFacts tries question substrings before topic and information substrings.
func matchFacts(recs []domain.FactRecord, query string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return "", false
	}
	for _, rec := range recs {
		if rec.Fact.IsQA() && strings.Contains(strings.ToLower(rec.Fact.Question), needle) {
			return rec.Fact.Answer, true
		}
	}
	for _, rec := range recs {
		if rec.Fact.IsQA() {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Fact.Topic), needle) || strings.Contains(strings.ToLower(rec.Fact.Information), needle) {
			return describe(rec), true
		}
	}
	return "", false
}

// searchIndex returns the best full-text hit, preferring earlier scopes.
func (s *Store) searchIndex(query string, scopes []domain.FactScope) (domain.FactRecord, bool) {
	if strings.TrimSpace(query) == "" || len(scopes) == 0 {
		return domain.FactRecord{}, false
	}
	ids, err := s.index.search(query)
	if err != nil {
		s.logger.Warn("fact index search failed", "err", err)
		return domain.FactRecord{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, scope := range scopes {
		for _, id := range ids {
			if rec, ok := s.byID[id]; ok && rec.Scope == scope {
				return rec, true
			}
		}
	}
	return domain.FactRecord{}, false
}

func (s *Store) remember(rec domain.FactRecord) {
	s.mu.Lock()
	s.byID[rec.ID] = rec
	s.mu.Unlock()
	if err := s.index.put(rec); err != nil {
		s.logger.Warn("failed to index fact", "id", rec.ID, "err", err)
	}
}

func describe(rec domain.FactRecord) string {
	if rec.Fact.IsQA() {
		return rec.Fact.Answer
	}
	if rec.Scope.Kind == domain.ScopePersonal {
		return fmt.Sprintf("关于“%s”（在你的“%s”个人笔记里），我学到的是：“%s”", rec.Fact.Topic, rec.Scope.Category, rec.Fact.Information)
	}
	return fmt.Sprintf("关于“%s”（在共享的“%s”知识里），学姐了解到的是：“%s”", rec.Fact.Topic, rec.Scope.Category, rec.Fact.Information)
}

func sourceOf(scope domain.FactScope) string {
	if scope.Kind == domain.ScopeShared {
		return SourceShared
	}
	return SourcePersonal
}

func trimFact(f domain.Fact) domain.Fact {
	return domain.Fact{
		Question:    strings.TrimSpace(f.Question),
		Answer:      strings.TrimSpace(f.Answer),
		Topic:       strings.TrimSpace(f.Topic),
		Information: strings.TrimSpace(f.Information),
	}
}
