package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Уровень считает сама база; выражение в DDL обязано давать
// score/50 + 1 с целочисленным делением.
func TestLevelColumnDerivation(t *testing.T) {
	require.Contains(t, schema,
		"level INT GENERATED ALWAYS AS (score / 50 + 1) STORED")

	tests := []struct {
		score int
		level int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{99, 2},
		{100, 3},
		{500, 11},
	}
	for _, tt := range tests {
		// Целочисленное деление Go и Postgres совпадает
		// для неотрицательных значений.
		assert.Equal(t, tt.level, tt.score/50+1, "score %d", tt.score)
	}
}

// Повторное участие пользователя в том же субботнике отсекает сама база.
func TestSchemaForbidsDuplicateParticipation(t *testing.T) {
	require.Contains(t, schema, "UNIQUE (user_id, cleanday_id)")
}
