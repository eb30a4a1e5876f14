package domain

// ResultStatus tags the outcome of a single step.
type ResultStatus string

const (
	ResultSuccess  ResultStatus = "success"
	ResultNotFound ResultStatus = "not_found"
	ResultFailure  ResultStatus = "failure"
	ResultError    ResultStatus = "error"
)

// Common failure reason codes.
const (
	ReasonOperationNotFound = "operation_not_found"
	ReasonInvalidArguments  = "invalid_arguments"
	ReasonMissingUserID     = "missing_user_id"
	ReasonInvalidCategory   = "invalid_category"
	ReasonPanic             = "panic"
)

// ToolResult is the structured outcome a worker returns for one step.
type ToolResult struct {
	Status ResultStatus `json:"status"`
	Data   any          `json:"data,omitempty"`
	Reason string       `json:"reason,omitempty"`
	Source string       `json:"source,omitempty"` // Where learned knowledge came from, e.g. personal_kb
}

// From returns a copy of r tagged with source.
func (r ToolResult) From(source string) ToolResult {
	r.Source = source
	return r
}

// Failed reports whether the result must abort the plan.
func (r ToolResult) Failed() bool {
	return r.Status == ResultFailure || r.Status == ResultError
}

func Success(data any) ToolResult {
	return ToolResult{Status: ResultSuccess, Data: data}
}

func NotFound(data any) ToolResult {
	return ToolResult{Status: ResultNotFound, Data: data}
}

func Failure(reason string, data any) ToolResult {
	return ToolResult{Status: ResultFailure, Reason: reason, Data: data}
}

func Errored(reason string, data any) ToolResult {
	return ToolResult{Status: ResultError, Reason: reason, Data: data}
}

// Outcome is the aggregate classification of all executed steps of a plan.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeNotFound        Outcome = "not_found"
	OutcomePartialFailure  Outcome = "partial_failure"
	OutcomeNoStepsExecuted Outcome = "no_steps_executed"
)

// Aggregate folds step statuses into one Outcome.
// Any failure or error wins over not_found, which wins over success.
// The result does not depend on the order of results.
func Aggregate(results []ToolResult) Outcome {
	if len(results) == 0 {
		return OutcomeNoStepsExecuted
	}
	out := OutcomeSuccess
	for _, r := range results {
		switch r.Status {
		case ResultFailure, ResultError:
			return OutcomePartialFailure
		case ResultNotFound:
			out = OutcomeNotFound
		case ResultSuccess:
		default:
			// Unknown tags count as errors.
			return OutcomePartialFailure
		}
	}
	return out
}
