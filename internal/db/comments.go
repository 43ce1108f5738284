package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

// commentBase — комментарий вместе с автором (через его участие).
const commentBase = `
SELECT cm.id,
       cm.text,
       cm.date,
       cm.cleanday_id,
       usr.id AS author_id, usr.first_name, usr.last_name, usr.login, usr.sex,
       usr.about_me, usr.score, usr.level, usr.city, usr.cleanday_count,
       usr.organized_count, usr.stat
FROM comments cm
JOIN participations p ON p.id = cm.participation_id
JOIN (` + userBase + `) AS usr ON usr.id = p.user_id`

var commentSortFields = map[string]string{
	"date": "date",
	"text": "text",
}

func scanComment(rows pgx.Rows) (models.Comment, error) {
	var c models.Comment
	var author models.GetUser
	err := rows.Scan(&c.Key, &c.Text, &c.Date, new(string),
		&author.Key, &author.FirstName, &author.LastName, &author.Login, &author.Sex,
		&author.AboutMe, &author.Score, &author.Level, &author.City,
		&author.CleandayCount, &author.OrganizedCount, &author.Stat)
	c.Author = &author
	return c, err
}

func (db *Database) ListComments(ctx context.Context, cleandayKey string, params models.ListParams) (int, []models.Comment, error) {
	normalizeList(&params)

	if _, err := db.getRawCleanday(ctx, db.Pool, cleandayKey); err != nil {
		return 0, nil, err
	}

	filtered := psql.
		Select("id", "text", "date", "cleanday_id",
			"author_id", "first_name", "last_name", "login", "sex", "about_me",
			"score", "level", "city", "cleanday_count", "organized_count", "stat").
		From("(" + commentBase + ") AS comment").
		Where(sq.Eq{"cleanday_id": cleandayKey})

	if params.SearchQuery != "" {
		filtered = filtered.Where(searchAny(params.SearchQuery, "text", "login"))
	}

	order, err := orderClause(commentSortFields, params.SortBy, "date", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	return queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit, scanComment)
}

// CreateComment — комментарий может оставить только участник субботника.
func (db *Database) CreateComment(ctx context.Context, userKey, cleandayKey, text string) (string, error) {
	commentID := uuid.NewString()

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := db.getRawCleanday(ctx, tx, cleandayKey); err != nil {
			return err
		}

		var participationID string
		err := tx.QueryRow(ctx,
			"SELECT id FROM participations WHERE user_id = $1 AND cleanday_id = $2",
			userKey, cleandayKey,
		).Scan(&participationID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("only participants may comment: %w", apperr.ErrConflict)
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO comments (id, participation_id, cleanday_id, text, date)
			 VALUES ($1, $2, $3, $4, $5)`,
			commentID, participationID, cleandayKey, text, time.Now().UTC(),
		); err != nil {
			return err
		}

		return appendLog(ctx, tx, "CommentCreated",
			"Оставлен комментарий к субботнику",
			logRelations{CleandayID: &cleandayKey, UserID: &userKey, CommentID: &commentID})
	})
	if err != nil {
		return "", err
	}

	return commentID, nil
}
