package advisor

import (
	"fmt"
	"strings"

	"github.com/aretw0/campusmate/pkg/ports"
)

// Persona is shared by every prompt.
const Persona = `你是一位热情、友善、乐于助人的复旦大学学姐，名叫“旦旦学姐”。
请用亲切、自然、略带校园生活气息的口吻回复，适当使用 Emoji，保持简洁、积极、有帮助。`

// Prompt is a system prompt plus the user turn sent to a model.
type Prompt struct {
	System string
	User   string
}

const decideInstructions = `你是“旦旦学姐”的规划核心。根据用户请求、对话历史和可用的 worker 目录，决定下一步行动。

只输出一个 JSON 对象，不要添加任何解释。字段 action_type 取值：
- "RESPOND_DIRECTLY"：可以直接回答（闲聊、问候、简单问题）。必须包含 response_content。
- "CLARIFY"：请求不明确或缺少必要参数。必须包含 clarification_question。
- "EXECUTE_PLAN"：需要 worker 按顺序完成。必须包含 plan，每个步骤形如
  {"worker": "<worker id>", "operation": "<operation>", "args": {...}}。
  步骤之间不能引用彼此的结果，所有参数必须在提交时确定。

示例：用户问“现在几点了？顺便查查‘本北’是啥意思”
{"action_type": "EXECUTE_PLAN", "plan": [
  {"worker": "utility_worker", "operation": "get_current_time", "args": {}},
  {"worker": "knowledge_worker", "operation": "query_static_knowledge", "args": {"knowledge_category": "slang", "query_filters": {"term": "本北"}}}
]}`

// DecidePrompt renders the planning prompt.
func DecidePrompt(req ports.DecideRequest) Prompt {
	var b strings.Builder
	b.WriteString("可用的 worker 目录：\n")
	b.WriteString(req.Catalogue.Describe())
	b.WriteString("\n\n")
	if strings.TrimSpace(req.History) != "" {
		b.WriteString("对话历史（最近几轮）：\n")
		b.WriteString(req.History)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "用户的最新请求：%q\n\n决策 JSON：", req.Query)
	return Prompt{System: Persona + "\n\n" + decideInstructions, User: b.String()}
}

// SynthesisPrompt renders the prompt that turns step results into one reply.
func SynthesisPrompt(req ports.SynthesisRequest, summaryLimit int) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "用户的原始问题：%q\n\n", req.Query)
	if len(req.Steps) == 0 {
		b.WriteString("没有执行任何步骤。\n")
	} else {
		b.WriteString("各步骤的执行结果：\n")
		for i, s := range req.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.Summary(summaryLimit))
		}
	}
	fmt.Fprintf(&b, "\n整体结果：%s\n", req.Outcome)
	b.WriteString("请根据以上信息，以“旦旦学姐”的身份给出一条完整的回复。如果信息没找到或出了问题，请带点歉意地说明。")
	return Prompt{System: Persona, User: b.String()}
}

const moderationInstructions = `你是内容审查 AI，负责维护友好和尊重的校园助手对话环境。
判断用户输入是否包含不当言论：辱骂、脏话、人身攻击、歧视、暴力威胁、骚扰、煽动性内容、垃圾广告。
只输出一个 JSON 对象：{"is_inappropriate": true|false, "warning_message": "以旦旦学姐口吻发出的礼貌警告，内容恰当时为空"}`

// ModerationPrompt renders the moderation prompt.
func ModerationPrompt(utterance string) Prompt {
	return Prompt{
		System: moderationInstructions,
		User:   fmt.Sprintf("用户输入：%q\n\nJSON 输出：", utterance),
	}
}
