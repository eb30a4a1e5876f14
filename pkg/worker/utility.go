package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
)

// Utility runs side-effect-free helper operations.
type Utility struct {
	ops      operations
	now      func() time.Time
	location *time.Location
	weather  map[string]map[string]string
}

// UtilityOption configures the Utility worker.
type UtilityOption func(*Utility)

// WithClock overrides the time source.
func WithClock(now func() time.Time) UtilityOption {
	return func(u *Utility) {
		u.now = now
	}
}

// WithLocation sets the zone used to report the current time.
func WithLocation(loc *time.Location) UtilityOption {
	return func(u *Utility) {
		if loc != nil {
			u.location = loc
		}
	}
}

// WithWeather replaces the simulated forecast table (location -> day -> forecast).
func WithWeather(table map[string]map[string]string) UtilityOption {
	return func(u *Utility) {
		u.weather = table
	}
}

// DefaultWeather is the simulated forecast table.
func DefaultWeather() map[string]map[string]string {
	return map[string]map[string]string{
		"上海":       {"今天": "晴朗，25°C☀️", "明天": "多云转小雨，22°C☂️"},
		"复旦大学邯郸校区": {"今天": "校园阳光明媚，26°C！"},
	}
}

// NewUtility creates the utility worker.
func NewUtility(opts ...UtilityOption) *Utility {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	u := &Utility{
		now:      time.Now,
		location: loc,
		weather:  DefaultWeather(),
	}
	for _, opt := range opts {
		opt(u)
	}

	u.ops = operations{
		"get_current_time": {
			Capability: domain.Capability{
				Name:        "get_current_time",
				Description: "获取当前的完整日期、时间和星期几。",
				Parameters:  schema(nil, map[string]any{}),
			},
			Run: u.currentTime,
		},
		"calculator": {
			Capability: domain.Capability{
				Name:        "calculator",
				Description: "执行基本的数学运算（加减乘除）。",
				Parameters: schema([]string{"operation", "operand1", "operand2"}, map[string]any{
					"operation": prop("string", "运算类型 ('add', '+', 'subtract', '-', 'multiply', '*', 'divide', '/')。"),
					"operand1":  prop("number", "第一个操作数。"),
					"operand2":  prop("number", "第二个操作数。"),
				}),
			},
			Run: u.calculate,
		},
		"get_weather_forecast": {
			Capability: domain.Capability{
				Name:        "get_weather_forecast",
				Description: "查询指定地点的天气预报（模拟数据）。",
				Parameters: schema([]string{"location"}, map[string]any{
					"location": prop("string", "用户想查询天气的城市或地点名称。"),
					"date":     prop("string", "日期 (例如 '今天', '明天')。默认'今天'。"),
				}),
			},
			Run: u.forecast,
		},
	}
	return u
}

func (u *Utility) ID() string { return domain.UtilityWorkerID }

func (u *Utility) Description() string {
	return "通用工具：当前时间、计算器、天气预报。"
}

func (u *Utility) Capabilities() []domain.Capability { return u.ops.capabilities() }

func (u *Utility) Execute(ctx context.Context, userID string, task domain.TaskPayload) domain.ToolResult {
	return u.ops.execute(ctx, userID, task)
}

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

func (u *Utility) currentTime(ctx context.Context, userID string, args map[string]any) domain.ToolResult {
	now := u.now().In(u.location)
	return domain.Success(fmt.Sprintf("现在是北京时间 %s，%s。", now.Format("2006年01月02日 15:04:05"), weekdays[now.Weekday()]))
}

type calcArgs struct {
	Operation string  `mapstructure:"operation"`
	Operand1  float64 `mapstructure:"operand1"`
	Operand2  float64 `mapstructure:"operand2"`
}

func (u *Utility) calculate(ctx context.Context, userID string, args map[string]any) domain.ToolResult {
	var a calcArgs
	if err := decodeArgs(args, &a); err != nil {
		return invalidArgs(err)
	}

	var result float64
	var symbol string
	switch strings.ToLower(strings.TrimSpace(a.Operation)) {
	case "add", "+":
		result, symbol = a.Operand1+a.Operand2, "+"
	case "subtract", "-":
		result, symbol = a.Operand1-a.Operand2, "-"
	case "multiply", "*":
		result, symbol = a.Operand1*a.Operand2, "*"
	case "divide", "/":
		if a.Operand2 == 0 {
			return domain.Failure("division_by_zero", "哎呀，除数不能是零哦！")
		}
		result, symbol = a.Operand1/a.Operand2, "/"
	default:
		return domain.Failure("unsupported_operation", fmt.Sprintf("学姐暂时只支持加减乘除哦，这个“%s”运算我还在学呢。", a.Operation))
	}
	return domain.Success(fmt.Sprintf("计算结果：%s %s %s = %s", num(a.Operand1), symbol, num(a.Operand2), num(result)))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type weatherArgs struct {
	Location string `mapstructure:"location"`
	Date     string `mapstructure:"date"`
}

func (u *Utility) forecast(ctx context.Context, userID string, args map[string]any) domain.ToolResult {
	var a weatherArgs
	if err := decodeArgs(args, &a); err != nil {
		return invalidArgs(err)
	}
	if strings.TrimSpace(a.Location) == "" {
		return domain.Failure("missing_location", "你想查哪里的天气呀？")
	}
	date := strings.TrimSpace(a.Date)
	switch date {
	case "", "today":
		date = "今天"
	case "明日", "tomorrow":
		date = "明天"
	}

	days, ok := u.weather[a.Location]
	if !ok {
		if strings.Contains(a.Location, "复旦") || strings.Contains(a.Location, "上海") {
			days = u.weather["上海"]
		}
	}
	if days == nil {
		return domain.NotFound(fmt.Sprintf("学姐暂时查不到“%s”的天气呢。", a.Location))
	}
	forecast, ok := days[date]
	if !ok {
		today := days["今天"]
		if today == "" {
			today = "未知"
		}
		return domain.NotFound(fmt.Sprintf("关于“%s”在“%s”的天气，学姐还没记呢。我只知道今天的：%s", a.Location, date, today))
	}
	return domain.Success(fmt.Sprintf("关于“%s”在“%s”的天气预报：%s", a.Location, date, forecast))
}
