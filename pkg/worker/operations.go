package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Operation binds a declared capability to its implementation.
type Operation struct {
	Capability domain.Capability
	Run        func(ctx context.Context, userID string, args map[string]any) domain.ToolResult
}

// operations is the fixed operation table shared by the concrete workers.
type operations map[string]Operation

func (ops operations) capabilities() []domain.Capability {
	out := make([]domain.Capability, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Capability)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (ops operations) execute(ctx context.Context, userID string, task domain.TaskPayload) domain.ToolResult {
	op, ok := ops[task.Operation]
	if !ok {
		return domain.Failure(domain.ReasonOperationNotFound, fmt.Sprintf("学姐还不会“%s”这个操作哦。", task.Operation))
	}
	args := task.Args
	if args == nil {
		args = map[string]any{}
	}
	return op.Run(ctx, userID, args)
}

// decodeArgs maps loosely typed advisor arguments onto a struct.
// Numbers given as strings and similar mismatches are converted.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

func invalidArgs(err error) domain.ToolResult {
	return domain.Failure(domain.ReasonInvalidArguments, fmt.Sprintf("参数好像不太对呢：%v", err))
}

func schema(required []string, props map[string]any) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}
