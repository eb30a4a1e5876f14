package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	got frontdoor.Request
	err error
}

func (f *fakeAsker) Ask(ctx context.Context, req frontdoor.Request) (frontdoor.Reply, error) {
	f.got = req
	if f.err != nil {
		return frontdoor.Reply{}, f.err
	}
	return frontdoor.Reply{SessionID: "s1", Text: "echo:" + req.Text, Status: domain.StatusCompleted}, nil
}

func testCatalogue(t *testing.T) *domain.Catalogue {
	t.Helper()
	c, err := domain.NewCatalogue(domain.CatalogueEntry{
		Worker:       domain.UtilityWorkerID,
		Description:  "utility",
		Capabilities: []domain.Capability{{Name: "calculator", Description: "math"}},
	})
	require.NoError(t, err)
	return c
}

func TestHandleAsk(t *testing.T) {
	asker := &fakeAsker{}
	s := NewServer(asker, testCatalogue(t), "1.0.0")

	reply, err := s.handleAsk(context.Background(), mcp.CallToolRequest{}, AskArgs{UserID: "alice", Message: "水课"})
	require.NoError(t, err)
	assert.Equal(t, "echo:水课", reply.Text)
	assert.Equal(t, frontdoor.Request{UserID: "alice", Text: "水课", Channel: frontdoor.ChannelMCP}, asker.got)

	asker.err = frontdoor.ErrMissingUserID
	_, err = s.handleAsk(context.Background(), mcp.CallToolRequest{}, AskArgs{Message: "hi"})
	assert.True(t, errors.Is(err, frontdoor.ErrMissingUserID))
}

func TestHandleListCapabilities(t *testing.T) {
	s := NewServer(&fakeAsker{}, testCatalogue(t), "1.0.0")

	res, err := s.handleListCapabilities(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var entries []domain.CatalogueEntry
	require.NoError(t, json.Unmarshal([]byte(text.Text), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, domain.UtilityWorkerID, entries[0].Worker)
	assert.Equal(t, "calculator", entries[0].Capabilities[0].Name)
}
