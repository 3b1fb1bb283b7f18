package impact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForStaircase(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		score float64
		want  Level
	}{
		{0.0, LevelNone},
		{0.1, LevelNone}, // low bound is exclusive
		{0.11, LevelLow},
		{0.39, LevelLow},
		{0.4, LevelMedium}, // medium bound is inclusive
		{0.69, LevelMedium},
		{0.7, LevelHigh}, // high bound is inclusive
		{0.92, LevelHigh},
		{1.0, LevelHigh},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, th.LevelFor(tc.score), "score %v", tc.score)
	}
}

func TestAffectsInclusiveCutoff(t *testing.T) {
	th := DefaultThresholds()
	assert.False(t, th.Affects(0.49))
	assert.True(t, th.Affects(0.5))
	assert.True(t, th.Affects(0.92))
}

func TestLevelRankOrdering(t *testing.T) {
	assert.Less(t, LevelNone.Rank(), LevelLow.Rank())
	assert.Less(t, LevelLow.Rank(), LevelMedium.Rank())
	assert.Less(t, LevelMedium.Rank(), LevelHigh.Rank())
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.High = 1.2
	assert.Error(t, bad.Validate())

	inverted := Thresholds{Affected: 0.5, High: 0.3, Medium: 0.4, Low: 0.5}
	assert.Error(t, inverted.Validate())
}

func TestValidateKeepsAffectedInsideStaircase(t *testing.T) {
	// Above High, a high-severity verdict would not be affected.
	aboveHigh := DefaultThresholds()
	aboveHigh.Affected = 0.95
	assert.Error(t, aboveHigh.Validate())

	// At or below Low, a none-severity verdict would be affected and
	// drive invalidation.
	belowLow := DefaultThresholds()
	belowLow.Affected = 0.05
	assert.Error(t, belowLow.Validate())
	belowLow.Affected = belowLow.Low
	assert.Error(t, belowLow.Validate())

	// The boundaries themselves are legal: affected exactly at High.
	atHigh := DefaultThresholds()
	atHigh.Affected = atHigh.High
	require.NoError(t, atHigh.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "impact.yaml")
	content := []byte(`thresholds:
  affected: 0.6
  high: 0.8
  medium: 0.5
  low: 0.2
weights:
  lexical: 0.4
  semantic: 0.2
  keyword: 0.2
  phrase: 0.2
version: "2.0"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Thresholds.Affected)
	assert.Equal(t, 0.8, cfg.Thresholds.High)
	assert.Equal(t, 0.4, cfg.Weights.Lexical)
	assert.Equal(t, "2.0", cfg.Version)
}

func TestLoadConfigRejectsBadThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "impact.yaml")
	content := []byte(`thresholds:
  affected: 0.5
  high: 0.2
  medium: 0.4
  low: 0.6
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/impact.yaml")
	assert.Error(t, err)
}
