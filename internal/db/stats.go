package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func (db *Database) GetStats(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	err := db.Pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM users u
		         WHERE EXISTS(SELECT 1 FROM participations p WHERE p.user_id = u.id)),
		       (SELECT COUNT(*) FROM cleandays),
		       (SELECT COUNT(*) FROM cleandays WHERE status = 'Завершен'),
		       COALESCE((SELECT SUM(area) FROM cleandays WHERE status = 'Завершен'), 0)`,
	).Scan(&s.UserCount, &s.ParticipatedUserCount, &s.CleandayCount,
		&s.PastCleandayCount, &s.CleandayMetric)
	return s, err
}

// Оси тепловых карт: имя поля запроса -> выражение для подписи группы.
// Числовые поля приводятся к тексту, чтобы подпись всегда была строкой.
var userHeatmapFields = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"login":      "login",
	"sex":        "sex",
	"city":       "city",
	"level":      "level::text",
	"cleandays":  "cleanday_count::text",
	"organized":  "organized_count::text",
	"stat":       "stat::text",
}

var cleandayHeatmapFields = map[string]string{
	"name":              "cleanday.name",
	"organization":      "organization",
	"organizer":         "COALESCE(organizer, '')",
	"city":              "city",
	"address":           "address",
	"status":            "status",
	"area":              "area::text",
	"recommended_count": "recommended_count::text",
	"participant_count": "participant_count::text",
	"tags":              "tag.value",
	"requirements":      "req.name",
}

func heatmapAxis(fields map[string]string, field string) (string, error) {
	expr, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("%w: unknown heatmap field %q", apperr.ErrValidation, field)
	}
	return expr, nil
}

func runHeatmap(ctx context.Context, q queryer, b sq.SelectBuilder) ([]models.HeatmapEntry, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.HeatmapEntry{}
	for rows.Next() {
		var e models.HeatmapEntry
		if err := rows.Scan(&e.XLabel, &e.YLabel, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UserHeatmap — количество пользователей по каждой наблюдаемой паре
// значений двух выбранных полей.
func (db *Database) UserHeatmap(ctx context.Context, hm models.HeatmapParams, params models.UsersParams) ([]models.HeatmapEntry, error) {
	xExpr, err := heatmapAxis(userHeatmapFields, hm.XField)
	if err != nil {
		return nil, err
	}
	yExpr, err := heatmapAxis(userHeatmapFields, hm.YField)
	if err != nil {
		return nil, err
	}

	filtered := applyUserFilters(userQuery(), params)

	b := psql.
		Select(xExpr+" AS x_label", yExpr+" AS y_label", "COUNT(*) AS count").
		FromSelect(filtered, "usr").
		GroupBy("1, 2")

	return runHeatmap(ctx, db.Pool, b)
}

// CleandayHeatmap — то же по субботникам. Списочные оси (теги, требования)
// сперва разворачиваются: субботник с тремя тегами даёт три группы.
func (db *Database) CleandayHeatmap(ctx context.Context, hm models.HeatmapParams, params models.CleandaysParams) ([]models.HeatmapEntry, error) {
	xExpr, err := heatmapAxis(cleandayHeatmapFields, hm.XField)
	if err != nil {
		return nil, err
	}
	yExpr, err := heatmapAxis(cleandayHeatmapFields, hm.YField)
	if err != nil {
		return nil, err
	}

	filtered := applyCleandayFilters(cleandayQuery(), params)

	b := psql.
		Select(xExpr+" AS x_label", yExpr+" AS y_label", "COUNT(*) AS count").
		FromSelect(filtered, "cleanday").
		GroupBy("1, 2")

	if hm.XField == "tags" || hm.YField == "tags" {
		b = b.JoinClause("CROSS JOIN LATERAL unnest(cleanday.tags) AS tag(value)")
	}
	if hm.XField == "requirements" || hm.YField == "requirements" {
		b = b.Join("requirements req ON req.cleanday_id = cleanday.id")
	}

	return runHeatmap(ctx, db.Pool, b)
}
