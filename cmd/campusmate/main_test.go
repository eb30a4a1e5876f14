package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CAMPUSMATE_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, run(t, "version"), "campusmate version ")
}

func TestAskCommand(t *testing.T) {
	out := run(t, "ask", "--provider", "offline", "--json", "你好")

	var reply frontdoor.Reply
	require.NoError(t, json.Unmarshal([]byte(out), &reply))
	assert.Equal(t, domain.StatusCompleted, reply.Status)
	assert.NotEmpty(t, reply.Text)
}

func TestCatalogueCommand(t *testing.T) {
	out := run(t, "catalogue")
	assert.Contains(t, out, domain.UtilityWorkerID)
	assert.Contains(t, out, "get_current_time")
	assert.Contains(t, out, "query_static_knowledge")
}
