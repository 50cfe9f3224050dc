package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"travelorders/internal/domain/models"
	"travelorders/internal/repositories"
)

func newAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := AuthHandler{Users: repositories.UserRepository{DB: db}, JWTSecret: testSecret}
	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	return r, mock
}

func TestRegisterIssuesScopedToken(t *testing.T) {
	r, mock := newAuthRouter(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE email = \\?").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := do(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              "sup3rsecret",
		"password_confirmation": "sup3rsecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Role  string `json:"role"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleUser, resp.Role, "registration defaults to the user role")

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (any, error) { return testSecret, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	scopes, ok := claims["scopes"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{models.ScopeUser}, scopes)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	r, mock := newAuthRouter(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE email = \\?").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := do(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              "sup3rsecret",
		"password_confirmation": "sup3rsecret",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "already in use")
}

func TestRegisterValidatesPayload(t *testing.T) {
	r, _ := newAuthRouter(t)

	// password confirmation mismatch never reaches the database
	w := do(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              "sup3rsecret",
		"password_confirmation": "different",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              "short",
		"password_confirmation": "short",
		"role":                  "superuser",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLoginVerifiesPassword(t *testing.T) {
	r, mock := newAuthRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(2, "Bob", "bob@example.com", string(hash), "admin", ts, ts)
	}

	mock.ExpectQuery("FROM users WHERE email = \\?").
		WithArgs("bob@example.com").
		WillReturnRows(row())

	w := do(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "bob@example.com",
		"password": "sup3rsecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (any, error) { return testSecret, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, []any{models.ScopeAdmin}, claims["scopes"])

	// wrong password fails with the same generic message as an unknown email
	mock.ExpectQuery("FROM users WHERE email = \\?").
		WithArgs("bob@example.com").
		WillReturnRows(row())

	w = do(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "bob@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestLoginUnknownEmail(t *testing.T) {
	r, mock := newAuthRouter(t)

	mock.ExpectQuery("FROM users WHERE email = \\?").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}))

	w := do(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
