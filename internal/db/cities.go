package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

var citySortFields = map[string]string{
	"name": "name",
}

func (db *Database) ListCities(ctx context.Context, params models.CitiesParams) (int, []models.City, error) {
	normalizeList(&params.ListParams)

	filtered := psql.Select("id", "name").From("cities")
	if params.SearchQuery != "" {
		filtered = filtered.Where(contains("name", params.SearchQuery))
	}

	order, err := orderClause(citySortFields, params.SortBy, "name", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	return queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit,
		func(rows pgx.Rows) (models.City, error) {
			var c models.City
			err := rows.Scan(&c.Key, &c.Name)
			return c, err
		})
}

func (db *Database) CreateCity(ctx context.Context, name string) (models.City, error) {
	city := models.City{Key: uuid.NewString(), Name: name}

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"INSERT INTO cities (id, name) VALUES ($1, $2)", city.Key, city.Name); err != nil {
			return err
		}
		return appendLog(ctx, tx, "CreateCity",
			fmt.Sprintf("Добавлен город '%s'", city.Name),
			logRelations{CityID: &city.Key})
	})
	if err != nil {
		return models.City{}, err
	}

	return city, nil
}
