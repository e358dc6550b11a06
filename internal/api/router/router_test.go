package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guardroster/config"
	"guardroster/internal/api/handler"
	"guardroster/internal/dto"
	"guardroster/internal/service"
	"guardroster/pkg/logger"
	"guardroster/pkg/redis"
)

type stubSync struct {
	requestIDs *[]string
}

func (s stubSync) Synchronize(ctx context.Context, req *dto.SyncRequest) (*dto.SyncResult, error) {
	if s.requestIDs != nil {
		*s.requestIDs = append(*s.requestIDs, logger.RequestID(ctx))
	}
	return &dto.SyncResult{Success: true, PuestoID: req.PuestoID}, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, _ *dto.DailyStatusRequest) ([]dto.ResolvedDailyStatus, error) {
	return []dto.ResolvedDailyStatus{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:       8080,
			BodyLimit:  1 << 20,
			RateLimit:  2,
			RateWindow: time.Minute,
			CORS:       config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}},
		},
	}
}

func testHandler() *handler.Handler {
	return handler.NewHandler(&service.Service{
		Sync:     stubSync{},
		Resolver: stubResolver{},
	})
}

func TestSetup_HealthAndMetrics(t *testing.T) {
	r, err := Setup(testConfig(), testHandler(), nil, zap.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_RoutesWired(t *testing.T) {
	r, err := Setup(testConfig(), testHandler(), nil, zap.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/pauta/sync", strings.NewReader(`{"puesto_id":"p1","fecha_efectiva":"2025-01-01"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pauta-diaria?fecha=2025-01-01", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_RequestIDPassthrough(t *testing.T) {
	r, err := Setup(testConfig(), testHandler(), nil, zap.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	// 含换行等不可写入日志的字符时重新生成
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc\nfake=1")
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "abc\nfake=1", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetup_RequestIDReachesService(t *testing.T) {
	var seen []string
	h := handler.NewHandler(&service.Service{Sync: stubSync{requestIDs: &seen}, Resolver: stubResolver{}})
	r, err := Setup(testConfig(), h, nil, zap.NewNop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/pauta/sync", strings.NewReader(`{"puesto_id":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "sync-42")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sync-42"}, seen)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestSetup_RateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Minute, zap.NewNop())
	defer rdb.Close()

	r, err := Setup(testConfig(), testHandler(), rdb, zap.NewNop())
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pauta-diaria", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// Redis 故障时降级放行
	mr.Close()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pauta-diaria", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_PerPostRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Minute, zap.NewNop())
	defer rdb.Close()

	cfg := testConfig()
	cfg.Server.RateLimit = 100
	cfg.Server.PostRateLimit = 1
	r, err := Setup(cfg, testHandler(), rdb, zap.NewNop())
	require.NoError(t, err)

	sync := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/pauta/sync", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	first := sync(`{"puesto_id":"p1"}`)
	require.Equal(t, http.StatusOK, first.Code)
	// 限流读过请求体后 handler 仍能正常绑定
	assert.Contains(t, first.Body.String(), `"puesto_id":"p1"`)

	second := sync(`{"puesto_id":" p1 "}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, sync(`{"puesto_id":"p2"}`).Code)
}

func TestSetup_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.BodyLimit = 64
	r, err := Setup(cfg, testHandler(), nil, zap.NewNop())
	require.NoError(t, err)

	body := `{"puesto_id":"p1","instalacion_id":"` + strings.Repeat("x", 100) + `"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/pauta/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":10005`)

	// 未声明长度时在绑定阶段识别
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/pauta/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSetup_CORSPreflight(t *testing.T) {
	r, err := Setup(testConfig(), testHandler(), nil, zap.NewNop())
	require.NoError(t, err)

	preflight := func(origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", "/api/v1/pauta/sync", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
