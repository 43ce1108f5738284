package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
)

func TestHeatmapAxis(t *testing.T) {
	expr, err := heatmapAxis(userHeatmapFields, "city")
	require.NoError(t, err)
	assert.Equal(t, "city", expr)

	expr, err = heatmapAxis(userHeatmapFields, "level")
	require.NoError(t, err)
	assert.Equal(t, "level::text", expr)

	_, err = heatmapAxis(userHeatmapFields, "password_hash")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = heatmapAxis(cleandayHeatmapFields, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCleandayHeatmapAxes(t *testing.T) {
	for _, field := range []string{"name", "organization", "organizer", "city",
		"address", "status", "area", "recommended_count", "participant_count",
		"tags", "requirements"} {
		_, err := heatmapAxis(cleandayHeatmapFields, field)
		assert.NoError(t, err, field)
	}
}
