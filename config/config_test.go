package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.Nil(t, err)

	assert.Equal(t, "Databases", cfg.Pipeline.CommunityName)
	assert.Equal(t, 7, len(cfg.Pipeline.CommunityKeywords))
	assert.Equal(t, 0.9, cfg.Pipeline.CoreThreshold)
	assert.Equal(t, 100, cfg.Pipeline.TopPaperLimit)
	assert.Equal(t, 1000, cfg.Neo4j.BatchSize)
	assert.Equal(t, 8003, cfg.Server.Port)
}

func TestLoad_Override(t *testing.T) {
	t.Setenv("TOP_PAPER_LIMIT", "10")
	t.Setenv("COMMUNITY_KEYWORDS", "Indexing,Big Data")
	t.Setenv("METADATA_DIALECT", "sqlite")

	cfg, err := Load()
	require.Nil(t, err)

	assert.Equal(t, 10, cfg.Pipeline.TopPaperLimit)
	assert.Equal(t, []string{"Indexing", "Big Data"}, cfg.Pipeline.CommunityKeywords)
	assert.Equal(t, "sqlite", cfg.Metadata.Dialect)
}
