package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name string
		in   models.ListParams
		want models.ListParams
	}{
		{
			name: "defaults",
			in:   models.ListParams{},
			want: models.ListParams{Limit: 20, SortOrder: models.SortAsc},
		},
		{
			name: "negative offset",
			in:   models.ListParams{Offset: -5, Limit: 10},
			want: models.ListParams{Offset: 0, Limit: 10, SortOrder: models.SortAsc},
		},
		{
			name: "limit above max",
			in:   models.ListParams{Limit: 500},
			want: models.ListParams{Limit: 50, SortOrder: models.SortAsc},
		},
		{
			name: "unknown order becomes asc",
			in:   models.ListParams{Limit: 10, SortOrder: "sideways"},
			want: models.ListParams{Limit: 10, SortOrder: models.SortAsc},
		},
		{
			name: "desc is kept",
			in:   models.ListParams{Limit: 10, SortOrder: models.SortDesc},
			want: models.ListParams{Limit: 10, SortOrder: models.SortDesc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizeList(&tt.in)
			assert.Equal(t, tt.want, tt.in)
		})
	}
}

func TestOrderClause(t *testing.T) {
	whitelist := map[string]string{"login": "login", "cleandays": "cleanday_count"}

	order, err := orderClause(whitelist, "login", "login", models.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, "login ASC, id ASC", order)

	order, err = orderClause(whitelist, "cleandays", "login", models.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, "cleanday_count DESC, id ASC", order)

	order, err = orderClause(whitelist, "", "login", models.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, "login DESC, id ASC", order)

	_, err = orderClause(whitelist, "password_hash", "login", models.SortAsc)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSearchAny(t *testing.T) {
	sql, args, err := searchAny("иван", "first_name", "login").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(first_name ILIKE ? OR login ILIKE ?)", sql)
	assert.Equal(t, []any{"%иван%", "%иван%"}, args)
}

func TestUserFiltersCountAndPageShareArgs(t *testing.T) {
	level := 3
	params := models.UsersParams{
		City:      "Москва",
		Sex:       []string{"female"},
		LevelFrom: &level,
	}

	filtered := applyUserFilters(userQuery(), params)

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(filtered, "filtered").ToSql()
	require.NoError(t, err)
	assert.Contains(t, countSQL, "SELECT COUNT(*) FROM (SELECT")
	assert.Contains(t, countSQL, "city ILIKE $1")
	assert.Contains(t, countSQL, "sex IN ($2)")
	assert.Contains(t, countSQL, "level >= $3")

	pageSQL, pageArgs, err := filtered.OrderBy("login ASC, id ASC").Offset(0).Limit(20).ToSql()
	require.NoError(t, err)
	assert.Contains(t, pageSQL, "ORDER BY login ASC, id ASC")
	assert.Contains(t, pageSQL, "LIMIT 20")

	assert.Equal(t, countArgs, pageArgs, "count и page должны получать одинаковые аргументы")
	assert.Equal(t, []any{"%Москва%", "female", 3}, countArgs)
}

func TestCleandayFilters(t *testing.T) {
	from := 10
	params := models.CleandaysParams{
		ListParams:           models.ListParams{SearchQuery: "парк"},
		Status:               []string{string(models.StatusPlanned), string(models.StatusEnded)},
		Tags:                 []string{"Пикник"},
		ParticipantCountFrom: &from,
	}

	sql, args, err := applyCleandayFilters(cleandayQuery(), params).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "status IN ($5,$6)")
	assert.Contains(t, sql, "tags && $7::text[]")
	assert.Contains(t, sql, "participant_count >= $8")
	assert.Len(t, args, 8)
	assert.Equal(t, []string{"Пикник"}, args[6])
	assert.Equal(t, 10, args[7])
}

func TestUniqueKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueKeys([]string{"a", "b", "a", "b", "a"}))
	assert.Empty(t, uniqueKeys(nil))
}
