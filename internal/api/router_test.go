package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"finvoice/internal/api/handlers"
	"finvoice/internal/models"
	"finvoice/internal/service"
	"finvoice/pkg/auth"
	"finvoice/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memUserStore struct {
	users map[string]*models.User
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.users[user.Email] = user
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memTxStore struct {
	transactions map[uuid.UUID]*models.Transaction
}

func (s *memTxStore) Create(_ context.Context, tx *models.Transaction) error {
	s.transactions[tx.ID] = tx
	return nil
}

func (s *memTxStore) GetByUser(_ context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return tx, nil
}

func (s *memTxStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	all, _ := s.AllByUser(ctx, userID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memTxStore) AllByUser(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	var result []*models.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memTxStore) DeleteByUser(_ context.Context, userID, id uuid.UUID) error {
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(s.transactions, id)
	return nil
}

type scriptedCompleter struct {
	response string
	err      error
}

func (c *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newTestApp(completer service.Completer) *fiber.App {
	log := zap.NewNop()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	parserCfg := &config.ParserConfig{RequireCategory: true}

	userStore := &memUserStore{users: make(map[string]*models.User)}
	txStore := &memTxStore{transactions: make(map[uuid.UUID]*models.Transaction)}

	authService := service.NewAuthService(userStore, jwtManager, log)
	parserService := service.NewParserService(completer, parserCfg, log)
	txService := service.NewTransactionService(txStore, parserService, log)
	statsService := service.NewStatsService(txStore, log)

	authHandler := handlers.NewAuthHandler(authService, log)
	txHandler := handlers.NewTransactionHandler(parserService, txService, log)
	statsHandler := handlers.NewStatsHandler(statsService, log)

	return SetupRouter(authHandler, txHandler, statsHandler, jwtManager, log)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/user/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRouter_HealthCheck(t *testing.T) {
	app := newTestApp(&scriptedCompleter{})

	resp, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(&scriptedCompleter{})

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/transactions/parse", "", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RegisterLoginRefresh(t *testing.T) {
	app := newTestApp(&scriptedCompleter{})

	token := registerAndLogin(t, app)
	require.NotEmpty(t, token)

	resp, body := doJSON(t, app, http.MethodPost, "/user/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	refreshToken, _ := body["refresh_token"].(string)
	require.NotEmpty(t, refreshToken)

	resp, body = doJSON(t, app, http.MethodPost, "/user/auth/refresh", "", map[string]string{
		"refresh_token": refreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])

	resp, _ = doJSON(t, app, http.MethodPost, "/user/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ParseEndpoint(t *testing.T) {
	completer := &scriptedCompleter{
		response: `{"type":"expense","amount":42.5,"category":"groceries"}`,
	}
	app := newTestApp(completer)
	token := registerAndLogin(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/transactions/parse", token, map[string]string{
		"text": "spent 42.50 on groceries",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "expense", body["type"])
	assert.Equal(t, 42.5, body["amount"])
	assert.Equal(t, "groceries", body["category"])
}

func TestRouter_ParseErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		completer  *scriptedCompleter
		wantStatus int
	}{
		{"request failure", &scriptedCompleter{err: errors.New("boom")}, http.StatusBadGateway},
		{"malformed json", &scriptedCompleter{response: `prose {"type":}`}, http.StatusUnprocessableEntity},
		{"validation failure", &scriptedCompleter{response: `{"type":"transfer","amount":1,"category":"x"}`}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.completer)
			token := registerAndLogin(t, app)

			resp, body := doJSON(t, app, http.MethodPost, "/api/v1/transactions/parse", token, map[string]string{
				"text": "whatever",
			})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRouter_TransactionLifecycleAndStats(t *testing.T) {
	app := newTestApp(&scriptedCompleter{})
	token := registerAndLogin(t, app)

	var ids []string
	for _, tx := range []map[string]any{
		{"type": "income", "amount": 3000, "category": "salary"},
		{"type": "expense", "amount": 1200, "category": "rent"},
		{"type": "expense", "amount": 300, "category": "groceries", "note": "weekly shop"},
	} {
		resp, body := doJSON(t, app, http.MethodPost, "/api/v1/transactions", token, tx)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, body["id"].(string))
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/transactions?limit=2", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := body["transactions"].([]any)
	assert.Len(t, items, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/stats/summary", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3000), body["income"])
	assert.Equal(t, float64(1500), body["expenses"])
	assert.Equal(t, float64(1500), body["balance"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/transactions/"+ids[0], token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/transactions/"+ids[0], token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/transactions/%s", uuid.New()), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_CreateRejectsInvalidTransaction(t *testing.T) {
	app := newTestApp(&scriptedCompleter{})
	token := registerAndLogin(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type":   "transfer",
		"amount": 10,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}
