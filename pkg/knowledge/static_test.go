package knowledge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	store, err := knowledge.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tests := []struct {
		name     string
		category string
		filters  domain.Filters
		status   domain.ResultStatus
		reason   string
		contains string
	}{
		{"slang hit", "slang", domain.Filters{"term": "绩点"}, domain.ResultSuccess, "", "GPA"},
		{"slang miss", "slang", domain.Filters{"term": "不存在的词"}, domain.ResultNotFound, "", "不存在的词"},
		{"slang without term", "slang", nil, domain.ResultFailure, "missing_term", ""},
		{"campus info", "campus_info", domain.Filters{"topic": "图书馆开放时间"}, domain.ResultSuccess, "", "8:00 - 22:00"},
		{"campus info without topic", "campus_info", domain.Filters{}, domain.ResultFailure, "missing_topic", ""},
		{"food by area", "food", domain.Filters{"location": "江湾"}, domain.ResultSuccess, "", "江湾食堂"},
		{"food without location", "food", nil, domain.ResultSuccess, "", "学姐为你找到了“一些”美食"},
		{"food miss", "food", domain.Filters{"location": "火星"}, domain.ResultNotFound, "", ""},
		{"learned category is not static", "food_tips", nil, domain.ResultError, "unsupported_category", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := store.Lookup(context.Background(), tt.category, tt.filters)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.contains != "" {
				assert.Contains(t, res.Data, tt.contains)
			}
		})
	}
}

func TestDefaultStatic_FoodLimit(t *testing.T) {
	s := knowledge.DefaultStatic()
	require.Greater(t, len(s.Food), knowledge.FoodLimit)

	store, err := knowledge.New(context.Background(), knowledge.WithStatic(s))
	require.NoError(t, err)
	res := store.Lookup(context.Background(), "food", nil)
	text := res.Data.(string)
	assert.Contains(t, text, s.Food[0].Name)
	assert.NotContains(t, text, s.Food[knowledge.FoodLimit].Name)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slang:\n  卷: 内卷，形容竞争激烈\n"), 0o644))

	s, err := knowledge.LoadStatic(path)
	require.NoError(t, err)
	assert.Equal(t, "内卷，形容竞争激烈", s.Slang["卷"])
	assert.NotNil(t, s.CampusInfo)

	_, err = knowledge.LoadStatic(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("slang: [unclosed"), 0o644))
	_, err = knowledge.LoadStatic(path)
	assert.Error(t, err)
}
