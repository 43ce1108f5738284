package handlers

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func TestParseListParams(t *testing.T) {
	q := url.Values{}
	q.Set("offset", "40")
	q.Set("limit", "10")
	q.Set("sort_by", "login")
	q.Set("sort_order", "desc")
	q.Set("search_query", "иван")

	p, err := parseListParams(q)
	require.NoError(t, err)
	assert.Equal(t, models.ListParams{
		Offset:      40,
		Limit:       10,
		SortBy:      "login",
		SortOrder:   models.SortDesc,
		SearchQuery: "иван",
	}, p)
}

func TestParseListParamsBadOffset(t *testing.T) {
	q := url.Values{}
	q.Set("offset", "сорок")

	_, err := parseListParams(q)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParseSet(t *testing.T) {
	q := url.Values{}
	q.Add("tags", "Пикник")
	q.Add("tags", "Покраска")
	q.Add("tags", " ")

	assert.Equal(t, []string{"Пикник", "Покраска"}, parseSet(q, "tags"))
	assert.Nil(t, parseSet(q, "status"))
}

// Значение с запятой должно пройти фильтр целиком.
func TestParseSetKeepsCommaValues(t *testing.T) {
	q := url.Values{}
	q.Add("participation_type", "Возможно, пойду")
	q.Add("participation_type", "Организатор")

	assert.Equal(t,
		[]string{"Возможно, пойду", "Организатор"},
		parseSet(q, "participation_type"))
}

func TestParseUsersParams(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/users/?city=Москва&sex=female&level_from=2&stat_to=100", nil)

	p, err := parseUsersParams(r)
	require.NoError(t, err)
	assert.Equal(t, "Москва", p.City)
	assert.Equal(t, []string{"female"}, p.Sex)
	require.NotNil(t, p.LevelFrom)
	assert.Equal(t, 2, *p.LevelFrom)
	require.NotNil(t, p.StatTo)
	assert.Equal(t, 100, *p.StatTo)
	assert.Nil(t, p.LevelTo)
}

func TestParseCleandaysParams(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/cleandays/?status=Запланирован&tags=Пикник&begin_date_from=2025-05-01T00:00:00Z&area_from=500", nil)

	p, err := parseCleandaysParams(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Запланирован"}, p.Status)
	assert.Equal(t, []string{"Пикник"}, p.Tags)
	require.NotNil(t, p.BeginDateFrom)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), p.BeginDateFrom.UTC())
	require.NotNil(t, p.AreaFrom)
	assert.Equal(t, 500, *p.AreaFrom)
}

func TestParseCleandaysParamsBadDate(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/cleandays/?begin_date_from=вчера", nil)

	_, err := parseCleandaysParams(r)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParseMembersParams(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/cleandays/x/members?participation_type=Возможно,%20пойду&participation_type=Организатор", nil)

	p, err := parseMembersParams(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Возможно, пойду", "Организатор"}, p.ParticipationTypes)
}
