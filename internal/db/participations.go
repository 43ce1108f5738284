package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

// memberBase — участник субботника: пользователь со всеми вычисляемыми
// полями плюс его участие и набор выполненных требований.
const memberBase = `
SELECT usr.id, usr.first_name, usr.last_name, usr.login, usr.sex, usr.about_me,
       usr.score, usr.level, usr.city, usr.cleanday_count, usr.organized_count,
       usr.stat, usr.created_at, usr.updated_at,
       p.cleanday_id,
       p.type AS participation_type,
       p.real_presence,
       COALESCE((SELECT array_agg(f.requirement_id::text ORDER BY f.requirement_id)
                 FROM fulfillments f WHERE f.participation_id = p.id), '{}') AS requirement_keys
FROM (` + userBase + `) AS usr
JOIN participations p ON p.user_id = usr.id`

var memberSortFields = map[string]string{
	"first_name":         "first_name",
	"last_name":          "last_name",
	"login":              "login",
	"sex":                "sex",
	"city":               "city",
	"level":              "level",
	"cleandays":          "cleanday_count",
	"organized":          "organized_count",
	"stat":               "stat",
	"participation_type": "participation_type",
}

func scanMember(rows pgx.Rows) (models.Member, error) {
	var m models.Member
	err := rows.Scan(&m.Key, &m.FirstName, &m.LastName, &m.Login, &m.Sex, &m.AboutMe,
		&m.Score, &m.Level, &m.City, &m.CleandayCount, &m.OrganizedCount, &m.Stat,
		&m.CreatedAt, &m.UpdatedAt,
		&m.ParticipationType, &m.RealPresence, &m.RequirementKeys)
	if m.RequirementKeys == nil {
		m.RequirementKeys = []string{}
	}
	return m, err
}

// ListMembers — участники субботника. Фильтр по требованиям отбирает тех,
// чей набор выполненных требований накрывает запрошенный.
func (db *Database) ListMembers(ctx context.Context, cleandayKey string, params models.MembersParams) (int, []models.Member, error) {
	normalizeList(&params.ListParams)

	if _, err := db.getRawCleanday(ctx, db.Pool, cleandayKey); err != nil {
		return 0, nil, err
	}

	columns := append(append([]string{}, userColumns...),
		"participation_type", "real_presence", "requirement_keys")

	filtered := psql.Select(columns...).
		From("(" + memberBase + ") AS member").
		Where(sq.Eq{"cleanday_id": cleandayKey})

	if params.SearchQuery != "" {
		filtered = filtered.Where(searchAny(params.SearchQuery, "first_name", "last_name", "login", "city"))
	}
	if len(params.ParticipationTypes) > 0 {
		filtered = filtered.Where(sq.Eq{"participation_type": params.ParticipationTypes})
	}
	if len(params.RequirementKeys) > 0 {
		filtered = filtered.Where(sq.Expr("requirement_keys @> ?::text[]", params.RequirementKeys))
	}

	order, err := orderClause(memberSortFields, params.SortBy, "login", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	return queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit, scanMember)
}

func (db *Database) GetParticipation(ctx context.Context, userKey, cleandayKey string) (models.Participation, error) {
	var p models.Participation
	err := db.Pool.QueryRow(ctx,
		`SELECT id, type, stat, real_presence FROM participations
		 WHERE user_id = $1 AND cleanday_id = $2`,
		userKey, cleandayKey,
	).Scan(&p.Key, &p.Type, &p.Stat, &p.RealPresence)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Participation{}, fmt.Errorf("participation: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return models.Participation{}, err
	}
	return p, nil
}

// JoinCleanday создаёт участие пользователя. Второе участие в том же
// субботнике — конфликт, независимо от типа.
func (db *Database) JoinCleanday(ctx context.Context, userKey, cleandayKey string, join models.JoinCleanday) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := db.getRawCleanday(ctx, tx, cleandayKey); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM participations WHERE user_id = $1 AND cleanday_id = $2)",
			userKey, cleandayKey,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("participation already exists: %w", apperr.ErrConflict)
		}

		participationID := uuid.NewString()
		if _, err := tx.Exec(ctx,
			`INSERT INTO participations (id, user_id, cleanday_id, type, stat, real_presence)
			 VALUES ($1, $2, $3, $4, 0, FALSE)`,
			participationID, userKey, cleandayKey, join.Type,
		); err != nil {
			return err
		}

		if len(join.RequirementKeys) > 0 {
			if err := replaceFulfillments(ctx, tx, participationID, cleandayKey, join.RequirementKeys); err != nil {
				return err
			}
		}

		return appendLog(ctx, tx, "CreateParticipation",
			fmt.Sprintf("Пользователь присоединился к субботнику: '%s'", join.Type),
			logRelations{CleandayID: &cleandayKey, UserID: &userKey})
	})
}

// UpdateParticipation меняет тип участия и/или набор выполненных требований.
// Обе под-операции независимы, каждая журналируется отдельно. Тип участия
// организатора неизменяем.
func (db *Database) UpdateParticipation(ctx context.Context, userKey, cleandayKey string, upd models.UpdateParticipation) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var participationID string
		var currentType models.ParticipationType
		err := tx.QueryRow(ctx,
			`SELECT id, type FROM participations
			 WHERE user_id = $1 AND cleanday_id = $2 FOR UPDATE`,
			userKey, cleandayKey,
		).Scan(&participationID, &currentType)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("participation does not exist: %w", apperr.ErrConflict)
		}
		if err != nil {
			return err
		}

		if upd.Type != nil {
			if currentType == models.ParticipationOrganizer {
				return fmt.Errorf("organizer cannot change participation type: %w", apperr.ErrConflict)
			}
			if _, err := tx.Exec(ctx,
				"UPDATE participations SET type = $1 WHERE id = $2", *upd.Type, participationID); err != nil {
				return err
			}
			if err := appendLog(ctx, tx, "UpdateParticipation",
				fmt.Sprintf("Изменён тип участия: '%s'", *upd.Type),
				logRelations{CleandayID: &cleandayKey, UserID: &userKey}); err != nil {
				return err
			}
		}

		if upd.RequirementKeys != nil {
			if err := replaceFulfillments(ctx, tx, participationID, cleandayKey, *upd.RequirementKeys); err != nil {
				return err
			}
			if err := appendLog(ctx, tx, "UpdateRequirements",
				"Обновлён набор выполненных требований",
				logRelations{CleandayID: &cleandayKey, UserID: &userKey}); err != nil {
				return err
			}
		}

		return nil
	})
}

// replaceFulfillments атомарно заменяет набор выполненных требований.
// Каждый ключ обязан принадлежать этому субботнику, иначе вся операция
// отменяется без частичной замены.
func replaceFulfillments(ctx context.Context, tx pgx.Tx, participationID, cleandayKey string, keys []string) error {
	for _, key := range keys {
		if err := validKey("requirement", key); err != nil {
			return err
		}
	}

	var owned int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(DISTINCT id) FROM requirements
		 WHERE id = ANY($1::uuid[]) AND cleanday_id = $2`,
		keys, cleandayKey,
	).Scan(&owned); err != nil {
		return err
	}
	if owned != len(uniqueKeys(keys)) {
		return fmt.Errorf("requirement does not belong to this cleanday: %w", apperr.ErrNotFound)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM fulfillments WHERE participation_id = $1", participationID); err != nil {
		return err
	}

	for _, key := range uniqueKeys(keys) {
		if _, err := tx.Exec(ctx,
			"INSERT INTO fulfillments (participation_id, requirement_id) VALUES ($1, $2)",
			participationID, key); err != nil {
			return err
		}
	}
	return nil
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
