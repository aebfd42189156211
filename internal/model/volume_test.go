package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeOf(t *testing.T) {
	vol, err := VolumeOf(t.TempDir())
	require.NoError(t, err)

	assert.Positive(t, vol.TotalBytes)
	assert.LessOrEqual(t, vol.FreeBytes, vol.TotalBytes)
	assert.GreaterOrEqual(t, vol.UsedPercent(), 0.0)
	assert.LessOrEqual(t, vol.UsedPercent(), 100.0)
}

func TestVolumeOfMissingPath(t *testing.T) {
	_, err := VolumeOf("/definitely/not/here")
	assert.Error(t, err)
}

func TestVolumeUsedPercentEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Volume{}.UsedPercent())
}
