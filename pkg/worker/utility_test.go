package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/worker"
	"github.com/stretchr/testify/assert"
)

func task(op string, args map[string]any) domain.TaskPayload {
	return domain.TaskPayload{Operation: op, Args: args}
}

func TestUtility_CurrentTime(t *testing.T) {
	fixed := time.Date(2024, 5, 20, 4, 30, 0, 0, time.UTC) // 12:30 in Shanghai
	u := worker.NewUtility(worker.WithClock(func() time.Time { return fixed }), worker.WithLocation(time.FixedZone("CST", 8*3600)))

	res := u.Execute(context.Background(), "u1", task("get_current_time", nil))
	assert.Equal(t, domain.ResultSuccess, res.Status)
	assert.Contains(t, res.Data, "2024年05月20日 12:30:00")
	assert.Contains(t, res.Data, "星期一")
}

func TestUtility_Calculator(t *testing.T) {
	u := worker.NewUtility()
	tests := []struct {
		name       string
		args       map[string]any
		wantStatus domain.ResultStatus
		wantReason string
		wantData   string
	}{
		{"add", map[string]any{"operation": "add", "operand1": 1, "operand2": 2}, domain.ResultSuccess, "", "1 + 2 = 3"},
		{"symbol", map[string]any{"operation": "*", "operand1": 1.5, "operand2": 4}, domain.ResultSuccess, "", "1.5 * 4 = 6"},
		{"string numbers", map[string]any{"operation": "-", "operand1": "10", "operand2": "4"}, domain.ResultSuccess, "", "10 - 4 = 6"},
		{"divide", map[string]any{"operation": "divide", "operand1": 9, "operand2": 3}, domain.ResultSuccess, "", "9 / 3 = 3"},
		{"divide by zero", map[string]any{"operation": "/", "operand1": 1, "operand2": 0}, domain.ResultFailure, "division_by_zero", ""},
		{"unknown op", map[string]any{"operation": "pow", "operand1": 1, "operand2": 2}, domain.ResultFailure, "unsupported_operation", ""},
		{"not a number", map[string]any{"operation": "+", "operand1": "abc", "operand2": 2}, domain.ResultFailure, domain.ReasonInvalidArguments, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := u.Execute(context.Background(), "u1", task("calculator", tt.args))
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantReason, res.Reason)
			if tt.wantData != "" {
				assert.Contains(t, res.Data, tt.wantData)
			}
		})
	}
}

func TestUtility_Weather(t *testing.T) {
	u := worker.NewUtility()
	tests := []struct {
		name   string
		args   map[string]any
		status domain.ResultStatus
		want   string
	}{
		{"known today", map[string]any{"location": "上海"}, domain.ResultSuccess, "晴朗"},
		{"known tomorrow", map[string]any{"location": "上海", "date": "明日"}, domain.ResultSuccess, "小雨"},
		{"campus", map[string]any{"location": "复旦大学邯郸校区", "date": "今天"}, domain.ResultSuccess, "阳光明媚"},
		{"fuzzy campus falls back to city", map[string]any{"location": "复旦江湾校区", "date": "明天"}, domain.ResultSuccess, "小雨"},
		{"unknown day", map[string]any{"location": "复旦大学邯郸校区", "date": "后天"}, domain.ResultNotFound, "阳光明媚"},
		{"unknown place", map[string]any{"location": "火星"}, domain.ResultNotFound, "火星"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := u.Execute(context.Background(), "u1", task("get_weather_forecast", tt.args))
			assert.Equal(t, tt.status, res.Status)
			assert.Contains(t, res.Data, tt.want)
		})
	}
}

func TestUtility_UnknownOperation(t *testing.T) {
	res := worker.NewUtility().Execute(context.Background(), "u1", task("launch_rocket", nil))
	assert.Equal(t, domain.ResultFailure, res.Status)
	assert.Equal(t, domain.ReasonOperationNotFound, res.Reason)
}
