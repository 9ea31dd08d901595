package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/ml"
	"github.com/adoptimizer/adoptimizer/internal/storage"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	statements, err := storage.Schema()
	require.NoError(t, err)
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	store := ml.NewFileStore(filepath.Join(t.TempDir(), "model.json"))
	lifecycle := ml.NewLifecycle(store, ml.TrainerConfig{
		SampleCount:  80,
		Seed:         42,
		TestFraction: 0.2,
		Forest:       ml.ForestConfig{TreeCount: 10, MaxDepth: 6, Seed: 42},
	})
	engine := ml.NewEngine(lifecycle, nil)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.RateLimit = 0 // keep tests independent of pacing

	return NewServer(cfg, Deps{
		Engine:  engine,
		Tokens:  tokens,
		Users:   repository.NewUserRepository(db),
		Metrics: repository.NewMetricsRepository(db),
		History: repository.NewHistoryRepository(db),
	})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

// registerUser creates an account and returns its token.
func registerUser(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": strings.Split(email, "@")[0],
		"email":    email,
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAuthFlow(t *testing.T) {
	s := setupTestServer(t)

	token := registerUser(t, s, "alice@example.com")

	// Duplicate email is rejected.
	rec := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct login.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Me returns the account.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestRegisterValidation(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bob",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
	assert.Contains(t, rec.Body.String(), "password")

	rec = doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPredictRequiresAuth(t *testing.T) {
	s := setupTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/predict", "", map[string]any{
		"impressions": 50000,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPredict(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "predict@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/predict", token, map[string]any{
		"impressions":     50000,
		"spend":           2000,
		"current_CTR":     0.03,
		"current_CPC":     15,
		"engagement_rate": 0.04,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	ctr, ok := data["predicted_CTR"].(float64)
	require.True(t, ok)
	assert.Greater(t, ctr, 0.0)
	assert.Less(t, ctr, 1.0)
	assert.Contains(t, []any{"High", "Medium", "Low"}, data["label"])
	assert.NotEmpty(t, data["recommendation"])
	assert.Equal(t, false, data["degraded"])
}

func TestPredictMissingFields(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "missing@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/predict", token, map[string]any{
		"impressions": 50000,
		"spend":       2000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields")
	assert.Contains(t, rec.Body.String(), "current_CTR")
	assert.Contains(t, rec.Body.String(), "current_CPC")
	assert.Contains(t, rec.Body.String(), "engagement_rate")
}

func TestPredictInvalidValues(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "invalid@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/predict", token, map[string]any{
		"impressions":     -5,
		"spend":           2000,
		"current_CTR":     0.03,
		"current_CPC":     15,
		"engagement_rate": 0.04,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "impressions")
}

func TestModelTrainAndStatus(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "trainer@example.com")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/model/status", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeData(t, rec)["trained"])

	rec = doJSON(t, s, http.MethodPost, "/api/v1/model/train", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "success", data["status"])

	rec = doJSON(t, s, http.MethodGet, "/api/v1/model/status", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, true, data["trained"])
	assert.Greater(t, data["r2"].(float64), 0.0)
}

func TestOptimizeWithCandidates(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "optimize@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/optimize", token, map[string]any{
		"confidence_threshold": 0.0,
		"campaigns": []map[string]any{
			{"name": "Google Ads Q4", "impressions": 50000, "current_spend": 2500, "current_ctr": 0.035, "current_cpc": 12.5, "engagement_rate": 0.05},
			{"name": "Facebook Retargeting", "impressions": 30000, "current_spend": 1800, "current_ctr": 0.028, "current_cpc": 18, "engagement_rate": 0.03},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.Equal(t, float64(2), data["evaluated"])
	actions, ok := data["actions"].([]any)
	require.True(t, ok)
	// Threshold zero accepts every valid campaign.
	assert.Len(t, actions, 2)
	first := actions[0].(map[string]any)
	assert.Equal(t, "Google Ads Q4", first["campaign"])
	assert.NotEmpty(t, first["action"])
}

func TestOptimizePercentThreshold(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "percent@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/optimize", token, map[string]any{
		"confidence_threshold": 75,
		"campaigns": []map[string]any{
			{"name": "Solo", "impressions": 50000, "current_spend": 2500, "current_ctr": 0.035, "current_cpc": 12.5, "engagement_rate": 0.05},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.75, decodeData(t, rec)["confidence_threshold"])
}

func TestOptimizeInvalidThreshold(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "badthreshold@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/optimize", token, map[string]any{
		"confidence_threshold": -0.5,
		"campaigns": []map[string]any{
			{"name": "Solo", "impressions": 50000, "current_spend": 2500, "current_ctr": 0.035, "current_cpc": 12.5, "engagement_rate": 0.05},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMetricsFlow(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "metrics@example.com")

	today := time.Now().UTC().Format("2006-01-02")
	for i := 0; i < 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/metrics/", token, map[string]any{
			"date":          today,
			"impressions":   10000,
			"clicks":        250,
			"spend":         400,
			"conversions":   20,
			"platform":      "Google Ads",
			"campaign_name": fmt.Sprintf("Campaign %d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, s, http.MethodGet, "/api/v1/metrics/summary?days=7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, float64(30000), data["total_impressions"])
	assert.InDelta(t, 0.025, data["ctr"].(float64), 1e-9)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/metrics/campaigns", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsValidation(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "badmetrics@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/metrics/", token, map[string]any{
		"impressions": -1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHistoryEndpointsEmpty(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "history@example.com")

	for _, path := range []string{"/api/v1/predictions", "/api/v1/optimizations", "/api/v1/recommendations"} {
		rec := doJSON(t, s, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		var envelope struct {
			Data []any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Empty(t, envelope.Data)
	}
}

func TestInsightsChart(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "insights@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/metrics/seed", token, map[string]any{
		"days": 7,
		"seed": 42,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/v1/insights/ctr", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Current CTR")
}

func TestInsightsChartNoData(t *testing.T) {
	s := setupTestServer(t)
	token := registerUser(t, s, "nodata@example.com")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/insights/ctr", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentTypeEnforced(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfgServer := setupTestServer(t)

	s := NewServer(&Config{
		Port:           0,
		AllowedOrigins: []string{"http://localhost:*"},
		RateLimit:      1,
		RateBurst:      1,
	}, Deps{
		Engine: cfgServer.engine,
		Tokens: cfgServer.tokens,
	})

	first := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
