package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkledger/internal/api/middleware"
	"parkledger/internal/repository/memory"
	"parkledger/internal/service"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	sessions := memory.NewParkingSessionRepository()
	feedback := memory.NewFeedbackRepository()
	auth := service.NewAuthService(users, "router-test-secret", time.Hour)

	return SetupRouter(Dependencies{
		Logger:          zap.NewNop(),
		AuthService:     auth,
		Ledger:          service.NewParkingService(sessions, users, feedback),
		FeedbackService: service.NewFeedbackService(feedback),
		AuthMiddleware:  middleware.NewAuthMiddleware(auth),
	})
}

func call(t *testing.T, r http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestRouter_ParkingLifecycle(t *testing.T) {
	r := newTestServer(t)

	code, body := call(t, r, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Alice", "username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User created successfully", body["message"])
	userID := body["userId"]

	code, _ = call(t, r, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Alice", "username": "alice", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body = call(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, userID, body["userId"])

	code, _ = call(t, r, http.MethodPost, "/api/parking/entry", "", map[string]string{"vehicleNumber": "KA01AB1234", "vehicleType": "car"})
	assert.Equal(t, http.StatusUnauthorized, code)

	entry := map[string]string{"vehicleNumber": "KA01AB1234", "vehicleType": "car", "entryTime": "2024-03-01T08:00:00Z"}
	code, body = call(t, r, http.MethodPost, "/api/parking/entry", token, entry)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, "Alice", body["recordedBy"])

	code, _ = call(t, r, http.MethodPost, "/api/parking/entry", token, entry)
	assert.Equal(t, http.StatusConflict, code)

	code, body = call(t, r, http.MethodGet, "/api/parking/vehicle/ka01ab1234", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "KA01AB1234", body["vehicleNumber"])

	code, _ = call(t, r, http.MethodPost, "/api/parking/exit", token, map[string]string{"vehicleNumber": "KA01AB1234", "exitTime": "2024-03-01T07:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(t, r, http.MethodPost, "/api/parking/exit", token, map[string]string{"vehicleNumber": "KA01AB1234", "exitTime": "2024-03-01T10:30:00Z"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(50), body["cost"])
	assert.Equal(t, 2.5, body["durationHours"])

	code, _ = call(t, r, http.MethodPost, "/api/parking/exit", token, map[string]string{"vehicleNumber": "KA01AB1234"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, r, http.MethodPost, "/api/feedback", token, map[string]string{
		"name": "Alice", "email": "alice@example.com", "category": "general", "message": "smooth exit",
	})
	assert.Equal(t, http.StatusCreated, code)

	code, _ = call(t, r, http.MethodPost, "/api/feedback", token, map[string]string{"name": "Alice", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(t, r, http.MethodGet, "/api/reports/summary", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"totalRevenue": float64(50), "totalParkings": float64(1), "totalFeedbacks": float64(1)}, body)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestServer(t)

	code, body := call(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "parkledger_active_sessions")
}
