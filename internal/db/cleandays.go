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

// cleandayBase — субботник со всеми присоединёнными полями: локация и город,
// число участников, организатор, даты из журнала. Как и в userBase, фильтры
// накладываются поверх подзапроса и видят вычисленные поля.
const cleandayBase = `
SELECT cd.id,
       cd.name,
       cd.description,
       cd.begin_date,
       cd.end_date,
       cd.organization,
       cd.area,
       cd.recommended_count,
       cd.status,
       cd.tags,
       cd.results,
       loc.id AS location_id,
       loc.address AS address,
       loc.instructions AS instructions,
       ct.id AS city_id,
       ct.name AS city,
       (SELECT COUNT(DISTINCT p.user_id) FROM participations p
         WHERE p.cleanday_id = cd.id) AS participant_count,
       org.login AS organizer,
       org.id AS organizer_key,
       (SELECT MIN(l.date) FROM logs l
         WHERE l.cleanday_id = cd.id AND l.type = 'CreateCleanday') AS created_at,
       COALESCE(
           (SELECT MAX(l.date) FROM logs l WHERE l.cleanday_id = cd.id AND l.type = 'UpdateCleanday'),
           (SELECT MIN(l.date) FROM logs l WHERE l.cleanday_id = cd.id AND l.type = 'CreateCleanday')
       ) AS updated_at
FROM cleandays cd
JOIN locations loc ON loc.id = cd.location_id
JOIN cities ct ON ct.id = loc.city_id
LEFT JOIN LATERAL (
    SELECT u.id, u.login
    FROM participations p
    JOIN users u ON u.id = p.user_id
    WHERE p.cleanday_id = cd.id AND p.type = 'Организатор'
    LIMIT 1
) org ON TRUE`

var cleandayColumns = []string{
	"id", "name", "description", "begin_date", "end_date", "organization",
	"area", "recommended_count", "status", "tags", "results",
	"location_id", "address", "instructions", "city_id", "city",
	"participant_count", "organizer", "organizer_key", "created_at", "updated_at",
}

var cleandaySortFields = map[string]string{
	"name":              "name",
	"begin_date":        "begin_date",
	"end_date":          "end_date",
	"organization":      "organization",
	"organizer":         "organizer",
	"city":              "city",
	"area":              "area",
	"recommended_count": "recommended_count",
	"participant_count": "participant_count",
	"status":            "status",
	"created_at":        "created_at",
	"updated_at":        "updated_at",
}

func scanGetCleanday(rows pgx.Rows) (models.GetCleanday, error) {
	var cd models.GetCleanday
	var organizer, organizerKey *string

	err := rows.Scan(&cd.Key, &cd.Name, &cd.Description, &cd.BeginDate, &cd.EndDate,
		&cd.Organization, &cd.Area, &cd.RecommendedCount, &cd.Status, &cd.Tags, &cd.Results,
		&cd.Location.Key, &cd.Location.Address, &cd.Location.Instructions,
		&cd.Location.City.Key, &cd.Location.City.Name,
		&cd.ParticipantCount, &organizer, &organizerKey, &cd.CreatedAt, &cd.UpdatedAt)
	if err != nil {
		return cd, err
	}

	cd.City = cd.Location.City.Name
	if cd.Tags == nil {
		cd.Tags = []string{}
	}
	if organizer != nil {
		cd.Organizer = *organizer
	}
	if organizerKey != nil {
		cd.OrganizerKey = *organizerKey
	}
	cd.Requirements = []models.Requirement{}
	return cd, nil
}

func cleandayQuery() sq.SelectBuilder {
	return psql.Select(cleandayColumns...).From("(" + cleandayBase + ") AS cleanday")
}

func applyCleandayFilters(b sq.SelectBuilder, params models.CleandaysParams) sq.SelectBuilder {
	if params.SearchQuery != "" {
		b = b.Where(searchAny(params.SearchQuery, "name", "organization", "organizer", "city"))
	}
	if params.Name != "" {
		b = b.Where(contains("name", params.Name))
	}
	if params.Organization != "" {
		b = b.Where(contains("organization", params.Organization))
	}
	if params.Organizer != "" {
		b = b.Where(contains("organizer", params.Organizer))
	}
	if params.City != "" {
		b = b.Where(contains("city", params.City))
	}
	if params.Address != "" {
		b = b.Where(contains("address", params.Address))
	}
	if len(params.Status) > 0 {
		b = b.Where(sq.Eq{"status": params.Status})
	}
	if len(params.Tags) > 0 {
		b = b.Where(sq.Expr("tags && ?::text[]", params.Tags))
	}
	b = timeRange(b, "begin_date", params.BeginDateFrom, params.BeginDateTo)
	b = timeRange(b, "end_date", params.EndDateFrom, params.EndDateTo)
	b = timeRange(b, "created_at", params.CreatedAtFrom, params.CreatedAtTo)
	b = timeRange(b, "updated_at", params.UpdatedAtFrom, params.UpdatedAtTo)
	b = intRange(b, "area", params.AreaFrom, params.AreaTo)
	b = intRange(b, "recommended_count", params.RecommendedCountFrom, params.RecommendedCountTo)
	b = intRange(b, "participant_count", params.ParticipantCountFrom, params.ParticipantCountTo)
	return b
}

func (db *Database) ListCleandays(ctx context.Context, params models.CleandaysParams) (int, []models.GetCleanday, error) {
	return db.listCleandays(ctx, applyCleandayFilters(cleandayQuery(), params), params.ListParams)
}

func (db *Database) listCleandays(ctx context.Context, filtered sq.SelectBuilder, params models.ListParams) (int, []models.GetCleanday, error) {
	normalizeList(&params)

	order, err := orderClause(cleandaySortFields, params.SortBy, "begin_date", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	total, page, err := queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit, scanGetCleanday)
	if err != nil {
		return 0, nil, err
	}

	if err := db.attachRequirements(ctx, page); err != nil {
		return 0, nil, err
	}
	return total, page, nil
}

// attachRequirements дозаполняет требования для уже отобранной страницы.
func (db *Database) attachRequirements(ctx context.Context, page []models.GetCleanday) error {
	if len(page) == 0 {
		return nil
	}

	keys := make([]string, len(page))
	index := make(map[string]int, len(page))
	for i, cd := range page {
		keys[i] = cd.Key
		index[cd.Key] = i
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT r.id, r.cleanday_id, r.name,
		        (SELECT COUNT(*) FROM fulfillments f WHERE f.requirement_id = r.id) AS users_amount
		 FROM requirements r
		 WHERE r.cleanday_id = ANY($1::uuid[])
		 ORDER BY r.name, r.id`, keys)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var req models.Requirement
		var cleandayKey string
		if err := rows.Scan(&req.Key, &cleandayKey, &req.Name, &req.UsersAmount); err != nil {
			return err
		}
		i := index[cleandayKey]
		page[i].Requirements = append(page[i].Requirements, req)
	}
	return rows.Err()
}

func (db *Database) GetCleandayByKey(ctx context.Context, key string) (models.GetCleanday, error) {
	query, args, err := cleandayQuery().Where(sq.Eq{"id": key}).ToSql()
	if err != nil {
		return models.GetCleanday{}, err
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return models.GetCleanday{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		return models.GetCleanday{}, fmt.Errorf("cleanday %s: %w", key, apperr.ErrNotFound)
	}
	cd, err := scanGetCleanday(rows)
	if err != nil {
		return models.GetCleanday{}, err
	}
	rows.Close()

	page := []models.GetCleanday{cd}
	if err := db.attachRequirements(ctx, page); err != nil {
		return models.GetCleanday{}, err
	}
	return page[0], nil
}

// rawCleanday — минимум полей для проверок внутри транзакций.
type rawCleanday struct {
	ID          string
	Status      models.CleandayStatus
	Area        int
	LocationID  string
	OrganizerID *string
}

const rawCleandaySelect = `
SELECT cd.id, cd.status, cd.area, cd.location_id,
       (SELECT p.user_id FROM participations p
         WHERE p.cleanday_id = cd.id AND p.type = 'Организатор' LIMIT 1)
FROM cleandays cd
WHERE cd.id = $1`

func (db *Database) getRawCleanday(ctx context.Context, q queryer, key string) (rawCleanday, error) {
	return scanRawCleanday(q.QueryRow(ctx, rawCleandaySelect, key), key)
}

// lockRawCleanday берёт строку субботника под замок до конца транзакции.
func lockRawCleanday(ctx context.Context, tx pgx.Tx, key string) (rawCleanday, error) {
	return scanRawCleanday(tx.QueryRow(ctx, rawCleandaySelect+" FOR UPDATE OF cd", key), key)
}

func scanRawCleanday(row pgx.Row, key string) (rawCleanday, error) {
	var raw rawCleanday
	err := row.Scan(&raw.ID, &raw.Status, &raw.Area, &raw.LocationID, &raw.OrganizerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return rawCleanday{}, fmt.Errorf("cleanday %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return rawCleanday{}, err
	}
	return raw, nil
}

func requireOrganizer(raw rawCleanday, userKey string) error {
	if raw.OrganizerID == nil || *raw.OrganizerID != userKey {
		return fmt.Errorf("only the organizer may modify cleanday %s: %w", raw.ID, apperr.ErrUnauthorized)
	}
	return nil
}

// CreateCleanday создаёт субботник, участие организатора и требования одной
// транзакцией. Статус при создании всегда «Запланирован».
func (db *Database) CreateCleanday(ctx context.Context, userKey string, cc models.CreateCleanday) (string, error) {
	if err := validKey("location", cc.LocationID); err != nil {
		return "", err
	}

	cleandayID := uuid.NewString()

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var locationExists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)", cc.LocationID,
		).Scan(&locationExists); err != nil {
			return err
		}
		if !locationExists {
			return fmt.Errorf("location %s: %w", cc.LocationID, apperr.ErrNotFound)
		}

		tags := cc.Tags
		if tags == nil {
			tags = []string{}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO cleandays (id, name, description, begin_date, end_date, organization,
			                        area, recommended_count, status, tags, location_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			cleandayID, cc.Name, cc.Description, cc.BeginDate, cc.EndDate, cc.Organization,
			cc.Area, cc.RecommendedCount, models.StatusPlanned, tags, cc.LocationID,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO participations (id, user_id, cleanday_id, type, stat, real_presence)
			 VALUES ($1, $2, $3, $4, 0, FALSE)`,
			uuid.NewString(), userKey, cleandayID, models.ParticipationOrganizer,
		); err != nil {
			return err
		}

		for _, req := range cc.Requirements {
			if _, err := tx.Exec(ctx,
				"INSERT INTO requirements (id, cleanday_id, name) VALUES ($1, $2, $3)",
				uuid.NewString(), cleandayID, req.Name,
			); err != nil {
				return err
			}
		}

		return appendLog(ctx, tx, "CreateCleanday",
			fmt.Sprintf("Создан субботник '%s'", cc.Name),
			logRelations{CleandayID: &cleandayID, LocationID: &cc.LocationID, UserID: &userKey})
	})
	if err != nil {
		return "", err
	}

	return cleandayID, nil
}

// UpdateCleanday — частичное обновление; доступно только организатору.
// Смена локации проверяется и журналируется отдельной записью.
func (db *Database) UpdateCleanday(ctx context.Context, userKey, key string, upd models.UpdateCleanday) error {
	if upd.LocationID != nil {
		if err := validKey("location", *upd.LocationID); err != nil {
			return err
		}
	}

	return db.inTx(ctx, func(tx pgx.Tx) error {
		raw, err := lockRawCleanday(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := requireOrganizer(raw, userKey); err != nil {
			return err
		}

		set := map[string]any{}
		if upd.Name != nil {
			set["name"] = *upd.Name
		}
		if upd.Description != nil {
			set["description"] = *upd.Description
		}
		if upd.BeginDate != nil {
			set["begin_date"] = *upd.BeginDate
		}
		if upd.EndDate != nil {
			set["end_date"] = *upd.EndDate
		}
		if upd.Organization != nil {
			set["organization"] = *upd.Organization
		}
		if upd.Area != nil {
			set["area"] = *upd.Area
		}
		if upd.RecommendedCount != nil {
			set["recommended_count"] = *upd.RecommendedCount
		}
		if upd.Tags != nil {
			set["tags"] = *upd.Tags
		}
		if upd.Status != nil {
			set["status"] = *upd.Status
		}

		if len(set) > 0 {
			query, args, err := psql.Update("cleandays").SetMap(set).Where(sq.Eq{"id": key}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}

		if err := appendLog(ctx, tx, "UpdateCleanday",
			"Обновлена информация о субботнике",
			logRelations{CleandayID: &key, UserID: &userKey}); err != nil {
			return err
		}

		if upd.LocationID != nil && *upd.LocationID != raw.LocationID {
			var locationExists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)", *upd.LocationID,
			).Scan(&locationExists); err != nil {
				return err
			}
			if !locationExists {
				return fmt.Errorf("location %s: %w", *upd.LocationID, apperr.ErrNotFound)
			}

			if _, err := tx.Exec(ctx,
				"UPDATE cleandays SET location_id = $1 WHERE id = $2", *upd.LocationID, key); err != nil {
				return err
			}

			if err := appendLog(ctx, tx, "UpdateCleandayLocation",
				"Изменено место проведения субботника",
				logRelations{CleandayID: &key, LocationID: upd.LocationID, UserID: &userKey}); err != nil {
				return err
			}
		}

		return nil
	})
}

// EndCleanday завершает субботник: статус «Завершен», итоги, фото, отметка
// присутствия, а каждому реальному участнику — площадь в stat и очки.
func (db *Database) EndCleanday(ctx context.Context, userKey, key string, req models.EndCleanday) error {
	for _, participantKey := range req.ParticipatedUserKeys {
		if err := validKey("participation of user", participantKey); err != nil {
			return err
		}
	}

	return db.inTx(ctx, func(tx pgx.Tx) error {
		raw, err := lockRawCleanday(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := requireOrganizer(raw, userKey); err != nil {
			return err
		}
		if raw.Status == models.StatusEnded {
			return fmt.Errorf("cleanday %s already ended: %w", key, apperr.ErrConflict)
		}

		results := req.Results
		if results == nil {
			results = []string{}
		}
		if _, err := tx.Exec(ctx,
			"UPDATE cleandays SET status = $1, results = $2 WHERE id = $3",
			models.StatusEnded, results, key); err != nil {
			return err
		}

		for _, participantKey := range req.ParticipatedUserKeys {
			tag, err := tx.Exec(ctx,
				`UPDATE participations SET real_presence = TRUE, stat = $1
				 WHERE user_id = $2 AND cleanday_id = $3`,
				raw.Area, participantKey, key)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("participation of user %s: %w", participantKey, apperr.ErrNotFound)
			}
			if err := addUserScore(ctx, tx, participantKey, raw.Area); err != nil {
				return err
			}
		}

		if err := insertCleandayImages(ctx, tx, key, req.Images); err != nil {
			return err
		}

		return appendLog(ctx, tx, "EndCleanday",
			"Субботник завершён",
			logRelations{CleandayID: &key, UserID: &userKey})
	})
}

func insertCleandayImages(ctx context.Context, q queryer, cleandayKey string, images []models.CreateImage) error {
	for _, img := range images {
		imageID := uuid.NewString()
		if _, err := q.Exec(ctx,
			"INSERT INTO images (id, photo, description) VALUES ($1, $2, $3)",
			imageID, img.Photo, img.Description); err != nil {
			return err
		}
		if _, err := q.Exec(ctx,
			"INSERT INTO cleanday_images (cleanday_id, image_id) VALUES ($1, $2)",
			cleandayKey, imageID); err != nil {
			return err
		}
	}
	return nil
}

// AddCleandayImages добавляет фотографии к субботнику вне завершения.
func (db *Database) AddCleandayImages(ctx context.Context, userKey, key string, images []models.CreateImage) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockRawCleanday(ctx, tx, key); err != nil {
			return err
		}
		if err := insertCleandayImages(ctx, tx, key, images); err != nil {
			return err
		}
		return appendLog(ctx, tx, "AddCleandayImages",
			"Добавлены фотографии субботника",
			logRelations{CleandayID: &key, UserID: &userKey})
	})
}

func (db *Database) ListCleandayImages(ctx context.Context, key string) ([]models.Image, error) {
	if _, err := db.getRawCleanday(ctx, db.Pool, key); err != nil {
		return nil, err
	}
	return listImages(ctx, db.Pool,
		`SELECT i.id, i.description, i.photo
		 FROM cleanday_images ci JOIN images i ON i.id = ci.image_id
		 WHERE ci.cleanday_id = $1
		 ORDER BY i.id`, key)
}

func listImages(ctx context.Context, q queryer, query string, args ...any) ([]models.Image, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.Key, &img.Description, &img.Photo); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// GetCleandayRequirements — требования субботника со счётчиком выполнивших.
func (db *Database) GetCleandayRequirements(ctx context.Context, key string) ([]models.Requirement, error) {
	if _, err := db.getRawCleanday(ctx, db.Pool, key); err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT r.id, r.name,
		        (SELECT COUNT(*) FROM fulfillments f WHERE f.requirement_id = r.id)
		 FROM requirements r
		 WHERE r.cleanday_id = $1
		 ORDER BY r.name, r.id`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := []models.Requirement{}
	for rows.Next() {
		var r models.Requirement
		if err := rows.Scan(&r.Key, &r.Name, &r.UsersAmount); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// DeleteRequirement удаляет требование вместе с отметками о выполнении.
// Принадлежность требования субботнику проверяется до удаления.
func (db *Database) DeleteRequirement(ctx context.Context, userKey, cleandayKey, reqKey string) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		raw, err := lockRawCleanday(ctx, tx, cleandayKey)
		if err != nil {
			return err
		}
		if err := requireOrganizer(raw, userKey); err != nil {
			return err
		}

		var owner string
		err = tx.QueryRow(ctx,
			"SELECT cleanday_id FROM requirements WHERE id = $1", reqKey).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("requirement %s: %w", reqKey, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if owner != cleandayKey {
			return fmt.Errorf("requirement %s belongs to another cleanday: %w", reqKey, apperr.ErrConflict)
		}

		if _, err := tx.Exec(ctx,
			"DELETE FROM fulfillments WHERE requirement_id = $1", reqKey); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"DELETE FROM requirements WHERE id = $1", reqKey); err != nil {
			return err
		}

		return appendLog(ctx, tx, "DeleteRequirement",
			"Удалено требование субботника",
			logRelations{CleandayID: &cleandayKey, UserID: &userKey})
	})
}

// ListUserCleandays — субботники, в которых пользователь участвует.
func (db *Database) ListUserCleandays(ctx context.Context, userKey string, params models.CleandaysParams) (int, []models.GetCleanday, error) {
	if _, err := db.GetRawUserByKey(ctx, userKey); err != nil {
		return 0, nil, err
	}

	filtered := applyCleandayFilters(cleandayQuery(), params).
		Where(sq.Expr("id IN (SELECT cleanday_id FROM participations WHERE user_id = ?)", userKey))
	return db.listCleandays(ctx, filtered, params.ListParams)
}

// ListUserOrganized — субботники, которые пользователь организовал.
func (db *Database) ListUserOrganized(ctx context.Context, userKey string, params models.CleandaysParams) (int, []models.GetCleanday, error) {
	if _, err := db.GetRawUserByKey(ctx, userKey); err != nil {
		return 0, nil, err
	}

	filtered := applyCleandayFilters(cleandayQuery(), params).
		Where(sq.Expr("organizer_key = ?", userKey))
	return db.listCleandays(ctx, filtered, params.ListParams)
}
