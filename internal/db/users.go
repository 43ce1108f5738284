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

// userBase — пользователь с вычисляемыми полями (город, счётчики участия,
// суммарный вклад, даты из журнала). Фильтры и сортировка накладываются
// поверх этого подзапроса, поэтому считаются по уже вычисленным полям.
const userBase = `
SELECT u.id,
       u.first_name,
       u.last_name,
       u.login,
       u.sex,
       u.about_me,
       u.score,
       u.level,
       c.name AS city,
       (SELECT COUNT(*) FROM participations p WHERE p.user_id = u.id) AS cleanday_count,
       (SELECT COUNT(*) FROM participations p
         WHERE p.user_id = u.id AND p.type = 'Организатор') AS organized_count,
       COALESCE((SELECT SUM(p.stat) FROM participations p WHERE p.user_id = u.id), 0)::INT AS stat,
       (SELECT MIN(l.date) FROM logs l
         WHERE l.user_id = u.id AND l.type = 'CreateUser') AS created_at,
       COALESCE(
           (SELECT MAX(l.date) FROM logs l WHERE l.user_id = u.id AND l.type = 'UpdateUser'),
           (SELECT MIN(l.date) FROM logs l WHERE l.user_id = u.id AND l.type = 'CreateUser')
       ) AS updated_at
FROM users u
JOIN cities c ON c.id = u.city_id`

var userColumns = []string{
	"id", "first_name", "last_name", "login", "sex", "about_me", "score", "level",
	"city", "cleanday_count", "organized_count", "stat", "created_at", "updated_at",
}

var userSortFields = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"login":      "login",
	"sex":        "sex",
	"city":       "city",
	"level":      "level",
	"cleandays":  "cleanday_count",
	"organized":  "organized_count",
	"stat":       "stat",
}

func scanGetUser(rows pgx.Rows) (models.GetUser, error) {
	var u models.GetUser
	err := rows.Scan(&u.Key, &u.FirstName, &u.LastName, &u.Login, &u.Sex, &u.AboutMe,
		&u.Score, &u.Level, &u.City, &u.CleandayCount, &u.OrganizedCount, &u.Stat,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func userQuery() sq.SelectBuilder {
	return psql.Select(userColumns...).From("(" + userBase + ") AS usr")
}

func applyUserFilters(b sq.SelectBuilder, params models.UsersParams) sq.SelectBuilder {
	if params.SearchQuery != "" {
		b = b.Where(searchAny(params.SearchQuery, "first_name", "last_name", "login", "city"))
	}
	if params.FirstName != "" {
		b = b.Where(contains("first_name", params.FirstName))
	}
	if params.LastName != "" {
		b = b.Where(contains("last_name", params.LastName))
	}
	if params.Login != "" {
		b = b.Where(contains("login", params.Login))
	}
	if params.City != "" {
		b = b.Where(contains("city", params.City))
	}
	if len(params.Sex) > 0 {
		b = b.Where(sq.Eq{"sex": params.Sex})
	}
	b = intRange(b, "level", params.LevelFrom, params.LevelTo)
	b = intRange(b, "cleanday_count", params.CleandaysFrom, params.CleandaysTo)
	b = intRange(b, "organized_count", params.OrganizedFrom, params.OrganizedTo)
	b = intRange(b, "stat", params.StatFrom, params.StatTo)
	return b
}

func (db *Database) ListUsers(ctx context.Context, params models.UsersParams) (int, []models.GetUser, error) {
	normalizeList(&params.ListParams)

	filtered := applyUserFilters(userQuery(), params)

	order, err := orderClause(userSortFields, params.SortBy, "first_name", params.SortOrder)
	if err != nil {
		return 0, nil, err
	}

	return queryPage(ctx, db.Pool, filtered, order, params.Offset, params.Limit, scanGetUser)
}

func (db *Database) GetUserByKey(ctx context.Context, key string) (models.GetUser, error) {
	return getUserByKey(ctx, db.Pool, key)
}

func getUserByKey(ctx context.Context, q queryer, key string) (models.GetUser, error) {
	query, args, err := userQuery().Where(sq.Eq{"id": key}).ToSql()
	if err != nil {
		return models.GetUser{}, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return models.GetUser{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		return models.GetUser{}, fmt.Errorf("user %s: %w", key, apperr.ErrNotFound)
	}
	return scanGetUser(rows)
}

func (db *Database) GetRawUserByLogin(ctx context.Context, login string) (models.User, error) {
	return getRawUser(ctx, db.Pool, sq.Eq{"login": login})
}

func (db *Database) GetRawUserByKey(ctx context.Context, key string) (models.User, error) {
	return getRawUser(ctx, db.Pool, sq.Eq{"id": key})
}

func getRawUser(ctx context.Context, q queryer, where sq.Eq) (models.User, error) {
	query, args, err := psql.
		Select("id", "first_name", "last_name", "login", "password_hash", "sex",
			"about_me", "score", "level").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return models.User{}, err
	}

	var u models.User
	err = q.QueryRow(ctx, query, args...).Scan(&u.Key, &u.FirstName, &u.LastName,
		&u.Login, &u.PasswordHash, &u.Sex, &u.AboutMe, &u.Score, &u.Level)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, fmt.Errorf("user: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Register создаёт пользователя, привязку к городу, аватар по умолчанию и
// запись журнала одной транзакцией.
func (db *Database) Register(ctx context.Context, reg models.RegisterUser, passwordHash string) (models.User, error) {
	if err := validKey("city", reg.CityID); err != nil {
		return models.User{}, err
	}

	var user models.User

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)", reg.Login,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("login already exists: %w", apperr.ErrConflict)
		}

		var cityExists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM cities WHERE id = $1)", reg.CityID,
		).Scan(&cityExists); err != nil {
			return err
		}
		if !cityExists {
			return fmt.Errorf("city %s: %w", reg.CityID, apperr.ErrNotFound)
		}

		userID := uuid.NewString()
		avatarID := uuid.NewString()

		if _, err := tx.Exec(ctx,
			"INSERT INTO images (id, photo, description) VALUES ($1, $2, $3)",
			avatarID, "default_image", "Аватар по умолчанию",
		); err != nil {
			return err
		}

		err := tx.QueryRow(ctx,
			`INSERT INTO users (id, first_name, last_name, login, password_hash, sex, about_me, score, city_id, avatar_id)
			 VALUES ($1, $2, $3, $4, $5, $6, '', 0, $7, $8)
			 RETURNING id, first_name, last_name, login, password_hash, sex, about_me, score, level`,
			userID, reg.FirstName, reg.LastName, reg.Login, passwordHash, reg.Sex, reg.CityID, avatarID,
		).Scan(&user.Key, &user.FirstName, &user.LastName, &user.Login,
			&user.PasswordHash, &user.Sex, &user.AboutMe, &user.Score, &user.Level)
		if err != nil {
			return err
		}

		return appendLog(ctx, tx, "CreateUser",
			fmt.Sprintf("Создан пользователь с логином '%s'", user.Login),
			logRelations{UserID: &user.Key})
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// UpdateUser — частичное обновление профиля. Смена города проверяется и
// журналируется отдельной записью. Авторизацию (свой профиль) проверяет
// вызывающий слой.
func (db *Database) UpdateUser(ctx context.Context, key string, upd models.UpdateUser, passwordHash *string) error {
	if upd.CityID != nil {
		if err := validKey("city", *upd.CityID); err != nil {
			return err
		}
	}

	return db.inTx(ctx, func(tx pgx.Tx) error {
		var login string
		err := tx.QueryRow(ctx, "SELECT login FROM users WHERE id = $1 FOR UPDATE", key).Scan(&login)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", key, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		set := map[string]any{}
		if upd.FirstName != nil {
			set["first_name"] = *upd.FirstName
		}
		if upd.LastName != nil {
			set["last_name"] = *upd.LastName
		}
		if upd.Sex != nil {
			set["sex"] = *upd.Sex
		}
		if upd.AboutMe != nil {
			set["about_me"] = *upd.AboutMe
		}
		if passwordHash != nil {
			set["password_hash"] = *passwordHash
		}

		if len(set) > 0 {
			query, args, err := psql.Update("users").SetMap(set).Where(sq.Eq{"id": key}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
			if err := appendLog(ctx, tx, "UpdateUser",
				fmt.Sprintf("Обновлён профиль пользователя '%s'", login),
				logRelations{UserID: &key}); err != nil {
				return err
			}
		}

		if upd.CityID != nil {
			var cityName string
			err := tx.QueryRow(ctx, "SELECT name FROM cities WHERE id = $1", *upd.CityID).Scan(&cityName)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("city %s: %w", *upd.CityID, apperr.ErrNotFound)
			}
			if err != nil {
				return err
			}

			if _, err := tx.Exec(ctx,
				"UPDATE users SET city_id = $1 WHERE id = $2", *upd.CityID, key); err != nil {
				return err
			}

			if err := appendLog(ctx, tx, "UpdateUserCity",
				fmt.Sprintf("Пользователь '%s' сменил город на '%s'", login, cityName),
				logRelations{UserID: &key, CityID: upd.CityID}); err != nil {
				return err
			}
		}

		return nil
	})
}

func (db *Database) GetUserAvatar(ctx context.Context, key string) (models.Image, error) {
	var img models.Image
	err := db.Pool.QueryRow(ctx,
		`SELECT i.id, i.description, i.photo
		 FROM users u JOIN images i ON i.id = u.avatar_id
		 WHERE u.id = $1`, key,
	).Scan(&img.Key, &img.Description, &img.Photo)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Image{}, fmt.Errorf("avatar of user %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Image{}, err
	}
	return img, nil
}

// SetUserAvatar заменяет аватар новым изображением.
func (db *Database) SetUserAvatar(ctx context.Context, key string, img models.CreateImage) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var login string
		err := tx.QueryRow(ctx, "SELECT login FROM users WHERE id = $1 FOR UPDATE", key).Scan(&login)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", key, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		imageID := uuid.NewString()
		if _, err := tx.Exec(ctx,
			"INSERT INTO images (id, photo, description) VALUES ($1, $2, $3)",
			imageID, img.Photo, img.Description); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"UPDATE users SET avatar_id = $1 WHERE id = $2", imageID, key); err != nil {
			return err
		}

		return appendLog(ctx, tx, "UpdateUserAvatar",
			fmt.Sprintf("Пользователь '%s' обновил аватар", login),
			logRelations{UserID: &key})
	})
}

// addUserScore добавляет очки; уровень пересчитывается самой базой.
func addUserScore(ctx context.Context, q queryer, key string, delta int) error {
	tag, err := q.Exec(ctx,
		"UPDATE users SET score = score + $1 WHERE id = $2", delta, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", key, apperr.ErrNotFound)
	}
	return nil
}
