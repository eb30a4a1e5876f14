package advisor

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// Texts used by the rules advisor.
const (
	WelcomeText   = "你好呀，我是旦旦学姐！校园黑话、美食、图书馆开放时间、天气、计算，或者想教我点新东西，都可以来问我哦～"
	ClarifyText   = "学姐没太明白你的意思呢，可以说得再具体一点吗？比如想查什么、在哪里、什么时候～"
	RulesWarning  = "学弟/学妹，我们来聊点开心的吧，请注意保持友好的交流环境哦～"
	greetingReply = "你好呀！有什么想问学姐的尽管说～"
)

// DefaultBlocklist is the built-in moderation word list of the rules advisor.
var DefaultBlocklist = []string{"傻逼", "去死", "滚蛋", "操你", "fuck", "shit"}

var (
	calcPattern  = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([+\-*/×÷加减乘除])\s*(-?\d+(?:\.\d+)?)`)
	quotedTerm   = regexp.MustCompile(`[“"‘']([^”"’']{1,12})[”"’']`)
	teachPattern = regexp.MustCompile(`(?:记住|教你|告诉你)[:：，,\s]*(.+?)(?:是|在|要)(.+)`)
	askPattern   = regexp.MustCompile(`(?:我(?:之前|以前)?(?:教过你|让你记住)(?:的)?)(.+?)(?:是什么|是啥|在哪|吗|呢|？|\?|$)`)
	// Dates are masked before calculator matching so 2024-05-20 is not a subtraction.
	datePattern  = regexp.MustCompile(`\d{2,4}[-/]\d{1,2}[-/]\d{1,2}`)
	helloPattern = regexp.MustCompile(`(?i)\b(?:hello|hi|hey)\b`)
)

var calcOps = map[string]string{"×": "*", "÷": "/", "加": "+", "减": "-", "乘": "*", "除": "/"}

// Rules is an offline advisor that routes by keywords. Its plans only use
// operations present in the catalogue it is given.
type Rules struct {
	blocklist []string
}

// NewRules creates a rules advisor. A nil blocklist uses DefaultBlocklist.
func NewRules(blocklist []string) *Rules {
	if blocklist == nil {
		blocklist = DefaultBlocklist
	}
	return &Rules{blocklist: blocklist}
}

func (r *Rules) Moderate(ctx context.Context, utterance string) (ports.Moderation, error) {
	lower := strings.ToLower(utterance)
	for _, w := range r.blocklist {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return ports.Moderation{Inappropriate: true, Message: RulesWarning}, nil
		}
	}
	return ports.Moderation{}, nil
}

func (r *Rules) Decide(ctx context.Context, req ports.DecideRequest) (domain.Decision, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return domain.RespondDirectly(WelcomeText), nil
	}

	var steps []domain.PlanStep
	add := func(worker, op string, args map[string]any) {
		step := domain.PlanStep{Worker: worker, Task: domain.TaskPayload{Operation: op, Args: args}}
		if req.Catalogue.ValidateStep(step) == nil {
			steps = append(steps, step)
		}
	}

	if m := teachPattern.FindStringSubmatch(q); m != nil {
		add(domain.KnowledgeWorkerID, "learn_new_info", map[string]any{
			"knowledge_category": domain.DefaultPersonalCategory,
			"topic":              strings.TrimSpace(m[1]),
			"information":        strings.TrimSpace(m[2]),
		})
		return decide(steps), nil
	}
	if m := askPattern.FindStringSubmatch(q); m != nil && strings.TrimSpace(m[1]) != "" {
		add(domain.KnowledgeWorkerID, "query_learned_knowledge", map[string]any{
			"knowledge_category":          domain.DefaultPersonalCategory,
			"user_query_for_learned_info": strings.TrimSpace(m[1]),
		})
		return decide(steps), nil
	}

	if containsAny(q, "几点了", "现在几点", "现在时间", "星期几", "几号") {
		add(domain.UtilityWorkerID, "get_current_time", map[string]any{})
	}
	if containsAny(q, "天气", "下雨", "气温") {
		args := map[string]any{"location": "上海", "date": "今天"}
		if strings.Contains(q, "邯郸") {
			args["location"] = "复旦大学邯郸校区"
		}
		if containsAny(q, "明天", "明日") {
			args["date"] = "明天"
		}
		add(domain.UtilityWorkerID, "get_weather_forecast", args)
	}
	if m := calcPattern.FindStringSubmatch(datePattern.ReplaceAllString(q, " ")); m != nil {
		op := m[2]
		if alias, ok := calcOps[op]; ok {
			op = alias
		}
		add(domain.UtilityWorkerID, "calculator", map[string]any{"operation": op, "operand1": m[1], "operand2": m[3]})
	}
	if term := slangTerm(q); term != "" {
		add(domain.KnowledgeWorkerID, "query_static_knowledge", map[string]any{
			"knowledge_category": "slang",
			"query_filters":      map[string]any{"term": term},
		})
	}
	for _, topic := range []string{"图书馆开放时间", "光华楼", "校医院"} {
		if strings.Contains(q, topic) || (topic == "图书馆开放时间" && strings.Contains(q, "图书馆")) {
			add(domain.KnowledgeWorkerID, "query_static_knowledge", map[string]any{
				"knowledge_category": "campus_info",
				"query_filters":      map[string]any{"topic": topic},
			})
			break
		}
	}
	if containsAny(q, "吃", "食堂", "美食", "餐厅") {
		filters := map[string]any{}
		for _, loc := range []string{"江湾", "南区", "北区", "邯郸", "大学路"} {
			if strings.Contains(q, loc) {
				filters["location"] = loc
				break
			}
		}
		add(domain.KnowledgeWorkerID, "query_static_knowledge", map[string]any{
			"knowledge_category": "food",
			"query_filters":      filters,
		})
	}

	if len(steps) > 0 {
		return domain.ExecutePlan(steps...), nil
	}
	if containsAny(q, "你好", "嗨", "在吗") || helloPattern.MatchString(q) {
		return domain.RespondDirectly(greetingReply), nil
	}
	return domain.Clarify(ClarifyText), nil
}

var (
	slangSuffixes = []string{"是什么意思", "是啥意思", "什么意思", "是啥"}
	fillers       = []string{"请问", "顺便", "帮我", "查查", "查一下", "问一下", "问问", "那个", "这个", "那", "再"}
)

// slangTerm extracts the term of a "X 是什么意思" question, preferring quoted terms.
func slangTerm(q string) string {
	cut := -1
	for _, suffix := range slangSuffixes {
		if i := strings.Index(q, suffix); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return ""
	}
	if m := quotedTerm.FindStringSubmatch(q[:cut]); m != nil {
		return strings.TrimSpace(m[1])
	}
	head := q[:cut]
	if i := strings.LastIndexAny(head, "，,。；;！!？? "); i >= 0 {
		_, size := utf8.DecodeRuneInString(head[i:])
		head = head[i+size:]
	}
	for trimmed := true; trimmed; {
		trimmed = false
		for _, f := range fillers {
			if strings.HasPrefix(head, f) {
				head, trimmed = strings.TrimPrefix(head, f), true
			}
		}
	}
	return strings.TrimSpace(head)
}

func decide(steps []domain.PlanStep) domain.Decision {
	if len(steps) == 0 {
		return domain.Clarify(ClarifyText)
	}
	return domain.ExecutePlan(steps...)
}

// Synthesize stitches step data together without a model.
func (r *Rules) Synthesize(ctx context.Context, req ports.SynthesisRequest) (string, error) {
	var parts []string
	for _, s := range req.Steps {
		if text, ok := s.Result.Data.(string); ok && strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	switch req.Outcome {
	case domain.OutcomeNoStepsExecuted:
		return ClarifyText, nil
	case domain.OutcomePartialFailure:
		return "抱歉，学姐在查资料的时候遇到了一点问题。" + strings.Join(parts, "\n"), nil
	case domain.OutcomeNotFound:
		return strings.Join(append(parts, "有些信息学姐暂时还不知道呢，如果你知道的话可以教教我哦～"), "\n"), nil
	}
	return strings.Join(parts, "\n"), nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
