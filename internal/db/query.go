package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	defaultLimit = 20
	maxLimit     = 50
)

// normalizeList приводит пагинацию к допустимым границам.
func normalizeList(p *models.ListParams) {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.SortOrder != models.SortDesc {
		p.SortOrder = models.SortAsc
	}
}

// orderClause переводит sort_by из белого списка в ORDER BY.
// Вторичный ключ id держит порядок страниц стабильным.
func orderClause(whitelist map[string]string, sortBy, fallback string, order models.SortOrder) (string, error) {
	column, ok := whitelist[sortBy]
	if sortBy == "" {
		column, ok = whitelist[fallback], true
	}
	if !ok {
		return "", fmt.Errorf("%w: unknown sort field %q", apperr.ErrValidation, sortBy)
	}

	dir := "ASC"
	if order == models.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id ASC", column, dir), nil
}

// queryPage считает фильтрованное множество и забирает его страницу.
// Оба запроса строятся из одного builder, поэтому фильтры не могут
// разойтись между count и page.
func queryPage[T any](ctx context.Context, q queryer, filtered sq.SelectBuilder,
	order string, offset, limit int, scanRow func(rows pgx.Rows) (T, error)) (int, []T, error) {

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(filtered, "filtered").ToSql()
	if err != nil {
		return 0, nil, err
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return 0, nil, err
	}

	pageSQL, pageArgs, err := filtered.
		OrderBy(order).
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return 0, nil, err
	}

	rows, err := q.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scanRow(rows)
		if err != nil {
			return 0, nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// validKey отсекает ключи из тела запроса до того, как они дойдут до
// uuid-колонок: не-ключ равнозначен отсутствующей сущности.
func validKey(kind, key string) error {
	if uuid.Validate(key) != nil {
		return fmt.Errorf("%s %q: %w", kind, key, apperr.ErrNotFound)
	}
	return nil
}

func contains(column, value string) sq.Sqlizer {
	return sq.ILike{column: "%" + value + "%"}
}

// searchAny — единый search_query по OR-набору текстовых полей.
func searchAny(value string, columns ...string) sq.Sqlizer {
	or := sq.Or{}
	for _, column := range columns {
		or = append(or, contains(column, value))
	}
	return or
}

func intRange(b sq.SelectBuilder, column string, from, to *int) sq.SelectBuilder {
	if from != nil {
		b = b.Where(sq.GtOrEq{column: *from})
	}
	if to != nil {
		b = b.Where(sq.LtOrEq{column: *to})
	}
	return b
}

func timeRange(b sq.SelectBuilder, column string, from, to *time.Time) sq.SelectBuilder {
	if from != nil {
		b = b.Where(sq.GtOrEq{column: *from})
	}
	if to != nil {
		b = b.Where(sq.LtOrEq{column: *to})
	}
	return b
}
