package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func parseListParams(q url.Values) (models.ListParams, error) {
	p := models.ListParams{
		SortBy:      q.Get("sort_by"),
		SortOrder:   models.SortOrder(q.Get("sort_order")),
		SearchQuery: q.Get("search_query"),
	}

	if err := parseInt(q, "offset", &p.Offset); err != nil {
		return p, err
	}
	if err := parseInt(q, "limit", &p.Limit); err != nil {
		return p, err
	}
	return p, nil
}

func parseInt(q url.Values, name string, dst *int) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer", apperr.ErrValidation, name)
	}
	*dst = value
	return nil
}

func parseIntPtr(q url.Values, name string) (*int, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", apperr.ErrValidation, name)
	}
	return &value, nil
}

func parseTimePtr(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp", apperr.ErrValidation, name)
	}
	return &value, nil
}

// parseSet собирает множество из повторяющихся параметров. Значения не
// делятся по запятым: запятая встречается внутри легальных значений
// («Возможно, пойду»).
func parseSet(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		if raw = strings.TrimSpace(raw); raw != "" {
			out = append(out, raw)
		}
	}
	return out
}

func parseUsersParams(r *http.Request) (models.UsersParams, error) {
	q := r.URL.Query()

	list, err := parseListParams(q)
	if err != nil {
		return models.UsersParams{}, err
	}

	p := models.UsersParams{
		ListParams: list,
		FirstName:  q.Get("first_name"),
		LastName:   q.Get("last_name"),
		Login:      q.Get("login"),
		City:       q.Get("city"),
		Sex:        parseSet(q, "sex"),
	}

	for name, dst := range map[string]**int{
		"level_from":     &p.LevelFrom,
		"level_to":       &p.LevelTo,
		"cleandays_from": &p.CleandaysFrom,
		"cleandays_to":   &p.CleandaysTo,
		"organized_from": &p.OrganizedFrom,
		"organized_to":   &p.OrganizedTo,
		"stat_from":      &p.StatFrom,
		"stat_to":        &p.StatTo,
	} {
		if *dst, err = parseIntPtr(q, name); err != nil {
			return models.UsersParams{}, err
		}
	}

	return p, nil
}

func parseCleandaysParams(r *http.Request) (models.CleandaysParams, error) {
	q := r.URL.Query()

	list, err := parseListParams(q)
	if err != nil {
		return models.CleandaysParams{}, err
	}

	p := models.CleandaysParams{
		ListParams:   list,
		Name:         q.Get("name"),
		Organization: q.Get("organization"),
		Organizer:    q.Get("organizer"),
		City:         q.Get("city"),
		Address:      q.Get("address"),
		Status:       parseSet(q, "status"),
		Tags:         parseSet(q, "tags"),
	}

	for name, dst := range map[string]**time.Time{
		"begin_date_from": &p.BeginDateFrom,
		"begin_date_to":   &p.BeginDateTo,
		"end_date_from":   &p.EndDateFrom,
		"end_date_to":     &p.EndDateTo,
		"created_at_from": &p.CreatedAtFrom,
		"created_at_to":   &p.CreatedAtTo,
		"updated_at_from": &p.UpdatedAtFrom,
		"updated_at_to":   &p.UpdatedAtTo,
	} {
		if *dst, err = parseTimePtr(q, name); err != nil {
			return models.CleandaysParams{}, err
		}
	}

	for name, dst := range map[string]**int{
		"area_from":              &p.AreaFrom,
		"area_to":                &p.AreaTo,
		"recommended_count_from": &p.RecommendedCountFrom,
		"recommended_count_to":   &p.RecommendedCountTo,
		"participant_count_from": &p.ParticipantCountFrom,
		"participant_count_to":   &p.ParticipantCountTo,
	} {
		if *dst, err = parseIntPtr(q, name); err != nil {
			return models.CleandaysParams{}, err
		}
	}

	return p, nil
}

func parseMembersParams(r *http.Request) (models.MembersParams, error) {
	q := r.URL.Query()

	list, err := parseListParams(q)
	if err != nil {
		return models.MembersParams{}, err
	}

	return models.MembersParams{
		ListParams:         list,
		ParticipationTypes: parseSet(q, "participation_type"),
		RequirementKeys:    parseSet(q, "requirements"),
	}, nil
}

func parseLogsParams(r *http.Request) (models.LogsParams, error) {
	q := r.URL.Query()

	list, err := parseListParams(q)
	if err != nil {
		return models.LogsParams{}, err
	}

	p := models.LogsParams{
		ListParams:      list,
		Type:            q.Get("type"),
		Description:     q.Get("description"),
		UserLogin:       q.Get("user_login"),
		LocationAddress: q.Get("location_address"),
		CommentText:     q.Get("comment_text"),
	}

	if p.DateFrom, err = parseTimePtr(q, "date_from"); err != nil {
		return models.LogsParams{}, err
	}
	if p.DateTo, err = parseTimePtr(q, "date_to"); err != nil {
		return models.LogsParams{}, err
	}

	return p, nil
}
