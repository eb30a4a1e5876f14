package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/campusmate/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seed []byte

// FoodLimit caps the number of food recommendations per lookup.
const FoodLimit = 3

// FoodItem is one dining recommendation.
type FoodItem struct {
	Name    string   `yaml:"name" json:"name"`
	Area    string   `yaml:"area" json:"area"`
	Summary string   `yaml:"summary" json:"summary"`
	Price   string   `yaml:"price" json:"price"`
	Tags    []string `yaml:"tags" json:"tags"`
}

// Static is the read-only, authoritative knowledge.
type Static struct {
	Slang      map[string]string `yaml:"slang" json:"slang"`
	Food       []FoodItem        `yaml:"food" json:"food"`
	CampusInfo map[string]string `yaml:"campus_info" json:"campus_info"`
}

// DefaultStatic returns the embedded seed.
func DefaultStatic() *Static {
	s, err := ParseStatic(seed)
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded seed is invalid: %v", err))
	}
	return s
}

// LoadStatic reads a static knowledge YAML file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read static knowledge %s: %w", path, err)
	}
	s, err := ParseStatic(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse static knowledge %s: %w", path, err)
	}
	return s, nil
}

// ParseStatic decodes static knowledge from YAML.
func ParseStatic(data []byte) (*Static, error) {
	var s Static
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Slang == nil {
		s.Slang = map[string]string{}
	}
	if s.CampusInfo == nil {
		s.CampusInfo = map[string]string{}
	}
	return &s, nil
}

func (s *Static) lookup(category string, filters domain.Filters) domain.ToolResult {
	switch category {
	case "slang":
		term := strings.TrimSpace(filters["term"])
		if term == "" {
			return domain.Failure("missing_term", "你需要告诉我你想查哪个黑话词哦。")
		}
		if def, ok := s.Slang[term]; ok {
			return domain.Success(def)
		}
		return domain.NotFound(fmt.Sprintf("抱歉，学姐的权威小本本上还没有关于“%s”这个黑话的记录呢。", term))

	case "food":
		return s.findFood(strings.TrimSpace(filters["location"]))

	case "campus_info":
		topic := strings.TrimSpace(filters["topic"])
		if topic == "" {
			return domain.Failure("missing_topic", "你想查询哪个校园官方信息主题呢？")
		}
		if info, ok := s.CampusInfo[topic]; ok {
			return domain.Success(info)
		}
		return domain.NotFound(fmt.Sprintf("关于“%s”的官方信息，学姐这里暂时还没有录入哦。", topic))
	}
	return domain.Errored("unsupported_category", fmt.Sprintf("学姐的官方资料库里暂时还不支持查询“%s”这类信息哦。", category))
}

// findFood matches location against area and name. An empty location returns the first entries.
func (s *Static) findFood(location string) domain.ToolResult {
	var matches []FoodItem
	needle := strings.ToLower(location)
	for _, item := range s.Food {
		if needle == "" || strings.Contains(strings.ToLower(item.Area), needle) || strings.Contains(strings.ToLower(item.Name), needle) {
			matches = append(matches, item)
		}
		if len(matches) == FoodLimit {
			break
		}
	}
	if len(matches) == 0 {
		return domain.NotFound("哎呀，学姐的官方美食指南里暂时没有找到符合你要求的美食推荐哦。")
	}

	label := location
	if label == "" {
		label = "一些"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "学姐为你找到了“%s”美食哦：", label)
	for _, item := range matches {
		tags := "暂无"
		if len(item.Tags) > 0 {
			tags = strings.Join(item.Tags, ", ")
		}
		fmt.Fprintf(&b, "\n- %s: %s (人均约: %s, 标签: %s)", item.Name, item.Summary, item.Price, tags)
	}
	return domain.Success(b.String())
}
