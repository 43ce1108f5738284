package db

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func newMockDatabase(t *testing.T) (*Database, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Database{Pool: mock}, mock
}

// Второе участие в том же субботнике — конфликт, вставки не происходит.
func TestJoinCleandayDuplicateConflict(t *testing.T) {
	database, mock := newMockDatabase(t)

	cleandayKey := uuid.NewString()
	userKey := uuid.NewString()
	orgKey := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT cd.id, cd.status, cd.area, cd.location_id")).
		WithArgs(cleandayKey).
		WillReturnRows(pgxmock.
			NewRows([]string{"id", "status", "area", "location_id", "organizer"}).
			AddRow(cleandayKey, models.StatusPlanned, 1000, uuid.NewString(), &orgKey))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM participations WHERE user_id = $1 AND cleanday_id = $2)")).
		WithArgs(userKey, cleandayKey).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := database.JoinCleanday(context.Background(), userKey, cleandayKey,
		models.JoinCleanday{Type: models.ParticipationWillGo})
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Несуществующая локация откатывает создание целиком: ни одной вставки.
func TestCreateCleandayRollsBackOnMissingLocation(t *testing.T) {
	database, mock := newMockDatabase(t)

	locationKey := uuid.NewString()
	userKey := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)")).
		WithArgs(locationKey).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := database.CreateCleanday(context.Background(), userKey, models.CreateCleanday{
		Name:       "Уборка набережной",
		LocationID: locationKey,
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Чужой ключ требования отменяет замену до первого DELETE:
// частичной замены набора не бывает.
func TestReplaceFulfillmentsRejectsForeignKeys(t *testing.T) {
	_, mock := newMockDatabase(t)
	ctx := context.Background()

	cleandayKey := uuid.NewString()
	keys := []string{uuid.NewString(), uuid.NewString()}

	mock.ExpectBegin()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT id) FROM requirements")).
		WithArgs(keys, cleandayKey).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err = replaceFulfillments(ctx, tx, uuid.NewString(), cleandayKey, keys)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Ключ, который не может быть ключом, отсекается до запросов к базе.
func TestReplaceFulfillmentsRejectsMalformedKey(t *testing.T) {
	_, mock := newMockDatabase(t)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	err = replaceFulfillments(ctx, tx, uuid.NewString(), uuid.NewString(),
		[]string{"42; DROP TABLE requirements"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEndCleandayRejectsMalformedParticipantKey(t *testing.T) {
	database, _ := newMockDatabase(t)

	err := database.EndCleanday(context.Background(), uuid.NewString(), uuid.NewString(),
		models.EndCleanday{ParticipatedUserKeys: []string{"кто-то"}})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestValidKey(t *testing.T) {
	require.NoError(t, validKey("city", uuid.NewString()))
	require.ErrorIs(t, validKey("city", "Москва"), apperr.ErrNotFound)
	require.ErrorIs(t, validKey("city", ""), apperr.ErrNotFound)
}
