package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
)

// Knowledge exposes the knowledge store as plan operations.
type Knowledge struct {
	store ports.KnowledgeStore
	ops   operations
}

// NewKnowledge creates the knowledge worker over store.
func NewKnowledge(store ports.KnowledgeStore) *Knowledge {
	k := &Knowledge{store: store}
	cats := store.Categories()
	learnable := append(append([]string{}, cats.Personal...), cats.Shared...)

	k.ops = operations{
		"query_static_knowledge": {
			Capability: domain.Capability{
				Name:        "query_static_knowledge",
				Description: "查询复旦校园内固定、权威的信息，例如黑话含义、食堂/美食地点、校园官方信息（如图书馆开放时间）。",
				Parameters: schema([]string{"knowledge_category"}, map[string]any{
					"knowledge_category": prop("string", fmt.Sprintf("要查询的静态知识类别，可选：%v。", cats.Static)),
					"query_filters": map[string]any{
						"type":        "object",
						"description": "查询条件：查黑话时是 {'term': '黑话词'}；查美食时是 {'location': '地点'}；查校园信息时是 {'topic': '主题'}。",
						"properties": map[string]any{
							"term":     prop("string", "要查询的黑话词语。"),
							"location": prop("string", "查询美食的地点。"),
							"topic":    prop("string", "校园信息主题。"),
						},
					},
				}),
			},
			Run: k.lookup,
		},
		"learn_new_info": {
			Capability: domain.Capability{
				Name:        "learn_new_info",
				Description: "当用户明确要“教”学姐新知识、某个问题的答案，或让学姐“记住”某件事时使用。信息存入用户的个人笔记。",
				Parameters: schema([]string{"knowledge_category"}, map[string]any{
					"knowledge_category": prop("string", fmt.Sprintf("个人笔记类别，可选：%v；无法分类时用 '%s'。", cats.Personal, domain.DefaultPersonalCategory)),
					"topic":              prop("string", "信息主题（陈述性信息时使用）。"),
					"information":        prop("string", "具体信息内容（与 topic 一起使用）。"),
					"question_taught":    prop("string", "用户教的具体问题（问答对时使用）。"),
					"answer_taught":      prop("string", "对应答案（问答对时使用）。"),
				}),
			},
			Run: k.learn,
		},
		"query_learned_knowledge": {
			Capability: domain.Capability{
				Name:        "query_learned_knowledge",
				Description: "查询用户之前教过的个人信息，或社群共享的动态知识。先查个人笔记，再查共享知识。",
				Parameters: schema([]string{"knowledge_category", "user_query_for_learned_info"}, map[string]any{
					"knowledge_category":          prop("string", fmt.Sprintf("已学知识类别，可选：%v。", learnable)),
					"user_query_for_learned_info": prop("string", "希望在已学知识中查找的问题或关键词。"),
				}),
			},
			Run: k.search,
		},
	}
	return k
}

func (k *Knowledge) ID() string { return domain.KnowledgeWorkerID }

func (k *Knowledge) Description() string {
	return "校园知识：静态资料查询、学习用户教的新知识、查询已学知识。"
}

func (k *Knowledge) Capabilities() []domain.Capability { return k.ops.capabilities() }

func (k *Knowledge) Execute(ctx context.Context, userID string, task domain.TaskPayload) domain.ToolResult {
	return k.ops.execute(ctx, userID, task)
}

type lookupArgs struct {
	Category string            `mapstructure:"knowledge_category"`
	Filters  map[string]string `mapstructure:"query_filters"`
}

func (k *Knowledge) lookup(ctx context.Context, userID string, args map[string]any) domain.ToolResult {
	var a lookupArgs
	if err := decodeArgs(args, &a); err != nil {
		return invalidArgs(err)
	}
	if a.Category == "" {
		return domain.Failure("missing_category", "你想查哪一类校园信息呢？")
	}
	return k.store.Lookup(ctx, a.Category, domain.Filters(a.Filters))
}

type learnArgs struct {
	Category    string `mapstructure:"knowledge_category"`
	Topic       string `mapstructure:"topic"`
	Information string `mapstructure:"information"`
	Question    string `mapstructure:"question_taught"`
	Answer      string `mapstructure:"answer_taught"`
}

func (k *Knowledge) learn(ctx context.Context, userID string, args map[string]any) domain.ToolResult {
	if strings.TrimSpace(userID) == "" {
		return domain.Failure(domain.ReasonMissingUserID, "学姐需要知道这是为谁记笔记哦！")
	}
	var a learnArgs
	if err := decodeArgs(args, &a); err != nil {
		return invalidArgs(err)
	}
	if a.Category == "" {
		return domain.Failure("missing_category", "学姐需要知道这个知识点属于哪个类别才能更好地记住哦。")
	}
	fact := domain.Fact{Question: a.Question, Answer: a.Answer, Topic: a.Topic, Information: a.Information}
	if !fact.IsQA() && !fact.IsInfo() {
		return domain.Failure("missing_fact", "你想教给学姐什么新知识呢？需要告诉我主题和信息，或者具体的问题和答案哦。")
	}
	return k.store.Learn(ctx, userID, a.Category, fact)
}

type searchArgs struct {
	Category string `mapstructure:"knowledge_category"`
	Query    string `mapstructure:"user_query_for_learned_info"`
}

func (k *Knowledge) search(ctx context.Context, userID string, args map[string]any) domain.ToolResult {
	if strings.TrimSpace(userID) == "" {
		return domain.Failure(domain.ReasonMissingUserID, "学姐需要知道是谁在问，才能查阅相关的学习笔记哦！")
	}
	var a searchArgs
	if err := decodeArgs(args, &a); err != nil {
		return invalidArgs(err)
	}
	if a.Category == "" {
		return domain.Failure("missing_category", "你想查哪个类别的学习笔记呀？")
	}
	if strings.TrimSpace(a.Query) == "" {
		return domain.Failure("missing_query", fmt.Sprintf("你想问学姐在“%s”类别里学到的什么事情呀？", a.Category))
	}
	return k.store.SearchLearned(ctx, userID, a.Category, a.Query)
}
