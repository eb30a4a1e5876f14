package knowledge_test

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/campusmate/pkg/knowledge"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/stretchr/testify/require"
)

func TestMemoryFacts_Contract(t *testing.T) {
	ports.RunFactStoreContract(t, knowledge.NewMemoryFacts())
}

func TestSQLiteFacts_Contract(t *testing.T) {
	facts, err := knowledge.OpenSQLiteFacts(filepath.Join(t.TempDir(), "facts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = facts.Close() })

	ports.RunFactStoreContract(t, facts)
}
