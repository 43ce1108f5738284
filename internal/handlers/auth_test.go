package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/db"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

const userByLoginSQL = "SELECT id, first_name, last_name, login, password_hash, sex, about_me, score, level FROM users WHERE login = $1"

func newLoginHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(&db.Database{Pool: mock}, auth.NewService("test-secret"), zap.NewNop()), mock
}

func doLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

// Неизвестный логин — 401, как и неверный пароль: форма не выдаёт,
// какой из двух факторов не сошёлся.
func TestLoginUnknownLogin(t *testing.T) {
	h, mock := newLoginHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta(userByLoginSQL)).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	rec := doLogin(t, h, `{"login": "nobody", "password": "Password1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Отказ базы — не отказ в доступе: клиент получает 500, а не 401.
func TestLoginInfrastructureError(t *testing.T) {
	h, mock := newLoginHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta(userByLoginSQL)).
		WithArgs("ivanov").
		WillReturnError(errors.New("connection refused"))

	rec := doLogin(t, h, `{"login": "ivanov", "password": "Password1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Invalid credentials")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newLoginHandler(t)

	hash, err := auth.HashPassword("ДругойПароль1")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(userByLoginSQL)).
		WithArgs("ivanov").
		WillReturnRows(pgxmock.
			NewRows([]string{"id", "first_name", "last_name", "login", "password_hash",
				"sex", "about_me", "score", "level"}).
			AddRow(uuid.NewString(), "Иван", "Иванов", "ivanov", hash,
				models.SexMale, "", 0, 1))

	rec := doLogin(t, h, `{"login": "ivanov", "password": "Password1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	require.NoError(t, mock.ExpectationsWereMet())
}
