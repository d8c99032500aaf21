package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCalmIsValid(t *testing.T) {
	require.NoError(t, DefaultCalm().Validate())
}

func TestDefaultThinAndSpikeAreValid(t *testing.T) {
	assert.NoError(t, DefaultThin().Validate())
	assert.NoError(t, DefaultSpike().Validate())
}

func TestLoadWithNoFileReturnsPreset(t *testing.T) {
	cfg, err := Load("", "spike")
	require.NoError(t, err)
	assert.Equal(t, "spike", cfg.Name)
}

func TestLoadUnknownPresetFallsBackToCalm(t *testing.T) {
	cfg, err := Load("", "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "calm", cfg.Name)
}

func TestValidateRejectsBadTickSize(t *testing.T) {
	cfg := DefaultCalm()
	cfg.TickSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeCancelProb(t *testing.T) {
	cfg := DefaultCalm()
	cfg.CancelProb = 1.5
	assert.Error(t, cfg.Validate())
}
