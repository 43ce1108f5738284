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

const locationBase = `
SELECT loc.id,
       loc.address,
       loc.instructions,
       c.id AS city_id,
       c.name AS city
FROM locations loc
JOIN cities c ON c.id = loc.city_id`

var locationSortFields = map[string]string{
	"address": "address",
	"city":    "city",
}

func scanLocation(rows pgx.Rows) (models.Location, error) {
	var loc models.Location
	err := rows.Scan(&loc.Key, &loc.Address, &loc.Instructions,
		&loc.City.Key, &loc.City.Name)
	return loc, err
}

func (db *Database) ListLocations(ctx context.Context, params models.LocationsParams) (int, []models.Location, error) {
	normalizeList(&params.ListParams)

	filtered := psql.
		Select("id", "address", "instructions", "city_id", "city").
		From("(" + locationBase + ") AS loc")

	if params.SearchQuery != "" {
		filtered = filtered.Where(contains("address", params.SearchQuery))
	}
	if params.CityName != "" {
		filtered = filtered.Where(contains("city", params.CityName))
	}

	order, err := orderClause(locationSortFields, params.SortBy, "address", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	return queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit, scanLocation)
}

func (db *Database) GetLocationByKey(ctx context.Context, key string) (models.Location, error) {
	query, args, err := psql.
		Select("id", "address", "instructions", "city_id", "city").
		From("(" + locationBase + ") AS loc").
		Where(sq.Eq{"id": key}).
		ToSql()
	if err != nil {
		return models.Location{}, err
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return models.Location{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		return models.Location{}, fmt.Errorf("location %s: %w", key, apperr.ErrNotFound)
	}
	return scanLocation(rows)
}

// CreateLocation создаёт локацию в существующем городе.
func (db *Database) CreateLocation(ctx context.Context, cl models.CreateLocation) (models.Location, error) {
	if err := validKey("city", cl.CityKey); err != nil {
		return models.Location{}, err
	}

	loc := models.Location{
		Key:          uuid.NewString(),
		Address:      cl.Address,
		Instructions: cl.Instructions,
	}

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"SELECT id, name FROM cities WHERE id = $1", cl.CityKey,
		).Scan(&loc.City.Key, &loc.City.Name)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("city %s: %w", cl.CityKey, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO locations (id, address, instructions, city_id) VALUES ($1, $2, $3, $4)",
			loc.Key, loc.Address, loc.Instructions, cl.CityKey); err != nil {
			return err
		}

		return appendLog(ctx, tx, "CreateLocation",
			fmt.Sprintf("Добавлена локация '%s'", loc.Address),
			logRelations{LocationID: &loc.Key, CityID: &loc.City.Key})
	})
	if err != nil {
		return models.Location{}, err
	}

	return loc, nil
}

func (db *Database) ListLocationImages(ctx context.Context, key string) ([]models.Image, error) {
	if _, err := db.GetLocationByKey(ctx, key); err != nil {
		return nil, err
	}
	return listImages(ctx, db.Pool,
		`SELECT i.id, i.description, i.photo
		 FROM location_images li JOIN images i ON i.id = li.image_id
		 WHERE li.location_id = $1
		 ORDER BY i.id`, key)
}

func (db *Database) AddLocationImages(ctx context.Context, key string, images []models.CreateImage) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)", key).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("location %s: %w", key, apperr.ErrNotFound)
		}

		for _, img := range images {
			imageID := uuid.NewString()
			if _, err := tx.Exec(ctx,
				"INSERT INTO images (id, photo, description) VALUES ($1, $2, $3)",
				imageID, img.Photo, img.Description); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				"INSERT INTO location_images (location_id, image_id) VALUES ($1, $2)",
				key, imageID); err != nil {
				return err
			}
		}

		return appendLog(ctx, tx, "AddLocationImages",
			"Добавлены фотографии локации",
			logRelations{LocationID: &key})
	})
}
