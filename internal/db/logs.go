package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

// logRelations — связи записи журнала с затронутыми сущностями.
// Незаполненные ссылки остаются NULL.
type logRelations struct {
	CleandayID *string
	UserID     *string
	CommentID  *string
	LocationID *string
	CityID     *string
}

// appendLog пишет одну запись журнала. Каждый мутирующий workflow обязан
// вызвать его по разу на каждое логическое изменение: от этих записей
// считаются created_at/updated_at.
func appendLog(ctx context.Context, q queryer, logType, description string, rel logRelations) error {
	_, err := q.Exec(ctx,
		`INSERT INTO logs (id, date, type, description, cleanday_id, user_id, comment_id, location_id, city_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.NewString(), time.Now().UTC(), logType, description,
		rel.CleandayID, rel.UserID, rel.CommentID, rel.LocationID, rel.CityID)
	return err
}

const logBase = `
SELECT l.id,
       l.date,
       l.type,
       l.description,
       l.cleanday_id,
       u.login AS user_login,
       cm.text AS comment_text,
       loc.address AS location_address
FROM logs l
LEFT JOIN users u ON u.id = l.user_id
LEFT JOIN comments cm ON cm.id = l.comment_id
LEFT JOIN locations loc ON loc.id = l.location_id`

var logSortFields = map[string]string{
	"date":        "date",
	"type":        "type",
	"description": "description",
}

func scanLog(rows pgx.Rows) (models.Log, error) {
	var l models.Log
	var cleandayID *string
	err := rows.Scan(&l.Key, &l.Date, &l.Type, &l.Description, &cleandayID,
		&l.UserLogin, &l.CommentText, &l.Address)
	return l, err
}

// ListCleandayLogs — журнал одного субботника.
func (db *Database) ListCleandayLogs(ctx context.Context, cleandayKey string, params models.LogsParams) (int, []models.Log, error) {
	normalizeList(&params.ListParams)

	if _, err := db.getRawCleanday(ctx, db.Pool, cleandayKey); err != nil {
		return 0, nil, err
	}

	filtered := psql.
		Select("id", "date", "type", "description", "cleanday_id",
			"user_login", "comment_text", "location_address").
		From("(" + logBase + ") AS log").
		Where(sq.Eq{"cleanday_id": cleandayKey})

	if params.SearchQuery != "" {
		filtered = filtered.Where(searchAny(params.SearchQuery, "type", "description", "user_login"))
	}
	if params.Type != "" {
		filtered = filtered.Where(contains("type", params.Type))
	}
	if params.Description != "" {
		filtered = filtered.Where(contains("description", params.Description))
	}
	if params.UserLogin != "" {
		filtered = filtered.Where(contains("user_login", params.UserLogin))
	}
	if params.LocationAddress != "" {
		filtered = filtered.Where(contains("location_address", params.LocationAddress))
	}
	if params.CommentText != "" {
		filtered = filtered.Where(contains("comment_text", params.CommentText))
	}
	filtered = timeRange(filtered, "date", params.DateFrom, params.DateTo)

	order, err := orderClause(logSortFields, params.SortBy, "date", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	return queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit, scanLog)
}
