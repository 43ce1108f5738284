package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/moevm/nosql1h25-cleanday/internal/db"
)

// Порядок важен: таблицы восстанавливаются по зависимостям внешних ключей.
var tables = []string{
	"cities",
	"images",
	"users",
	"locations",
	"location_images",
	"cleandays",
	"cleanday_images",
	"participations",
	"requirements",
	"fulfillments",
	"comments",
	"logs",
}

// users.level — вычисляемая колонка, её вставлять нельзя.
var insertOverrides = map[string]string{
	"users": `INSERT INTO users (id, first_name, last_name, login, password_hash,
	                             sex, about_me, score, city_id, avatar_id)
	          SELECT id, first_name, last_name, login, password_hash,
	                 sex, about_me, score, city_id, avatar_id
	          FROM json_populate_recordset(NULL::users, $1::json)`,
}

// Export выгружает все таблицы в zip-архив с JSON-файлом на таблицу.
func Export(ctx context.Context, database *db.Database) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, table := range tables {
		var data string
		query := fmt.Sprintf("SELECT COALESCE(json_agg(t), '[]')::text FROM %s t", table)
		if err := database.Pool.QueryRow(ctx, query).Scan(&data); err != nil {
			return nil, fmt.Errorf("export %s: %w", table, err)
		}

		w, err := zw.Create(table + ".json")
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import заменяет содержимое базы данными из архива. Вся загрузка идёт
// одной транзакцией: битый архив не оставляет базу полупустой.
func Import(ctx context.Context, database *db.Database, archive []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	dumps := make(map[string]string, len(zr.File))
	for _, file := range zr.File {
		name := strings.TrimSuffix(file.Name, ".json")
		rc, err := file.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return err
		}
		dumps[name] = string(data)
	}

	tx, err := database.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.Exec(ctx, "DELETE FROM "+tables[i]); err != nil {
			return err
		}
	}

	for _, table := range tables {
		dump, ok := dumps[table]
		if !ok {
			continue
		}
		query := insertOverrides[table]
		if query == "" {
			query = fmt.Sprintf(
				"INSERT INTO %s SELECT * FROM json_populate_recordset(NULL::%s, $1::json)",
				table, table)
		}
		if _, err := tx.Exec(ctx, query, dump); err != nil {
			return fmt.Errorf("import %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
