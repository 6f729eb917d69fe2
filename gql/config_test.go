package gql_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := gql.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, gql.DefaultConfig(), cfg)
	assert.Equal(t, "/tmp/gql/my_pipe", cfg.PipePath())
	assert.Equal(t, "/tmp/gql/src", cfg.SrcPath())
	assert.Equal(t, "/tmp/gql/result", cfg.ResultPath())
	assert.Equal(t, "/tmp/gql/src_graph.txt", cfg.SeedGraphPath())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	pathname := filepath.Join(dir, "gql.yaml")
	yamlText := "root_dir: " + dir + "\nmax_missing_edges: 4\nmax_subsets: 0\ncatalog_path: cat\n"
	require.NoError(t, os.WriteFile(pathname, []byte(yamlText), 0644))

	cfg, err := gql.LoadConfig(pathname)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.RootDir)
	assert.Equal(t, 4, cfg.MaxMissingEdges)
	assert.Equal(t, gql.DefaultMaxSubsets, cfg.MaxSubsets)
	assert.Equal(t, "my_pipe", cfg.PipeName)
	assert.Equal(t, "cat", cfg.CatalogPath)

	_, err = gql.LoadConfig(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, gql.ErrFile)

	require.NoError(t, os.WriteFile(pathname, []byte("root_dir: [unterminated"), 0644))
	_, err = gql.LoadConfig(pathname)
	assert.ErrorIs(t, err, gql.ErrParse)
}
