package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heroes.vdata")
	require.NoError(t, os.WriteFile(path, []byte("{\n\thero_astro =\n\t{\n\t\tm_HeroID = 5\n\t}\n}\n"), 0644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"parse", path})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "{\n  \"hero_astro\": {\n    \"m_HeroID\": 5\n  }\n}\n", out.String())
}

func TestParseCommand_Unsupported(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"parse", filepath.Join(t.TempDir(), "notes.md")})
	assert.Error(t, cmd.Execute())
}

func TestCommands_Registered(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"build", "parse", "collate", "combine", "export", "publish", "graph", "neighbors", "artifacts", "fetch", "migrate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestNeighborsCommand_UnknownLabel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"neighbors", "player", "astro"})
	assert.ErrorContains(t, cmd.Execute(), "unknown node label")
}

func TestArtifactsCommand_UnknownKind(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"artifacts", "embeddings"})
	assert.ErrorContains(t, cmd.Execute(), "unknown artifact kind")
}
