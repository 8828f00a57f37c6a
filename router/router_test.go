package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartmenu-api/config"
	"github.com/yeremiapane/smartmenu-api/database"
	"github.com/yeremiapane/smartmenu-api/hub"
	"github.com/yeremiapane/smartmenu-api/metrics"
	"github.com/yeremiapane/smartmenu-api/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	hub    *hub.Hub
	tokens *utils.TokenManager
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	log := utils.NewTestLogger()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db, log))

	m, err := metrics.New(false)
	require.NoError(t, err)
	h := hub.New(log)
	tokens := utils.NewTokenManager("test-secret", time.Hour, nil)

	t.Cleanup(func() {
		h.Close()
		sqlDB.Close()
	})

	cfg := &config.Config{
		GinMode:       gin.TestMode,
		FrontendURL:   "https://menu.example.com",
		RateLimit:     1000,
		RateWindow:    time.Minute,
		CORSOrigins:   []string{"http://localhost:5173"},
		ResetTokenTTL: time.Hour,
	}
	engine := SetupRouter(Deps{DB: db, Config: cfg, Log: log, Tokens: tokens, Hub: h, Metrics: m})
	return &testServer{engine: engine, hub: h, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
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
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := setupServer(t)

	w, body := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w, body = s.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", body["error"])
}

// register -> login -> create a table -> look it up -> fetch its QR code,
// with a dashboard socket watching the table and QR events.
func TestEndToEndTableFlow(t *testing.T) {
	s := setupServer(t)

	w, body := s.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Owner", "email": "owner@example.com", "password": "secret1", "role": "admin",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	restaurantID := body["data"].(map[string]interface{})["restaurantId"].(string)

	w, body = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "owner@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := body["data"].(map[string]interface{})["token"].(string)

	srv := httptest.NewServer(s.engine)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	w, body = s.do(t, http.MethodPost, "/api/tables", gin.H{"tableNumber": 9, "capacity": 2}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tableID := body["data"].(map[string]interface{})["id"].(string)

	var msg hub.Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, hub.EventTableCreate, msg.Event)

	w, body = s.do(t, http.MethodGet, "/api/tables/lookup?table=9&restaurantId="+restaurantID, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Table 9", body["displayLabel"])
	assert.Equal(t, tableID, body["table"].(map[string]interface{})["id"])

	w, body = s.do(t, http.MethodGet, "/api/tables/"+tableID+"/qr", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://menu.example.com/menu/"+tableID, body["qr_data"])

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, hub.EventQRCreate, msg.Event)

	w, _ = s.do(t, http.MethodGet, "/api/tables/"+tableID+"/qr", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWebsocketRequiresToken(t *testing.T) {
	s := setupServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)

	s.do(t, http.MethodGet, "/api/tables/lookup?table=1", nil, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `smartmenu_table_lookups_total{result="not_found",strategy="table_number"} 1`)
	assert.Contains(t, w.Body.String(), `smartmenu_http_requests_total{method="GET",route="/api/tables/lookup",status="404"} 1`)
}
