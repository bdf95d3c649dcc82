package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/utils"
)

type stubAuth struct {
	claims *utils.Claims
	err    error
	got    string
}

func (s *stubAuth) Authenticate(_ context.Context, raw string) (*utils.Claims, error) {
	s.got = raw
	return s.claims, s.err
}

func serve(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	auth := &stubAuth{claims: &utils.Claims{Email: "a@b.co", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}}
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c)+" "+Claims(c).Email)
	}, JWTAuth(auth))

	rec := serve(e, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer tok-123"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1 a@b.co", rec.Body.String())
	assert.Equal(t, "tok-123", auth.got)

	for _, h := range []string{"", "Basic abc", "Bearer ", "tok-123"} {
		rec = serve(e, http.MethodGet, "/me", http.Header{"Authorization": {h}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, h)
		assert.JSONEq(t, `{"success":false,"message":"Access denied. No token provided."}`, rec.Body.String())
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		JWTAuth(&stubAuth{err: apperr.Unauthorized("Token has been revoked")}))

	rec := serve(e, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer x"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has been revoked")

	e2 := echo.New()
	e2.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		JWTAuth(&stubAuth{err: apperr.Internal("Authentication failed", errors.New("redis down"))}))
	rec = serve(e2, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer x"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIdentity_Public(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, UserID(c))
	assert.Nil(t, Claims(c))
	assert.Equal(t, "anon", rateSubject(c))
}

func TestDisabledRedisMiddlewarePassThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: []string{"GET"}}, nil)
	require.NoError(t, rc.Invalidate(context.Background()))

	var nilCache *ResponseCache
	require.NoError(t, nilCache.Invalidate(context.Background()))

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil), rc.Middleware())

	rec := serve(e, http.MethodGet, "/x", nil)
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestResponseCache_HitAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{
		Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20,
	}, rdb)

	calls := 0
	e := echo.New()
	e.GET("/slots", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"success": true, "n": calls})
	}, rc.Middleware())
	e.GET("/missing", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"success": false})
	}, rc.Middleware())

	rec := serve(e, http.MethodGet, "/slots", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"success":true,"n":1}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/slots", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"n":1}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Equal(t, 1, calls)

	require.NoError(t, rc.Invalidate(context.Background()))
	rec = serve(e, http.MethodGet, "/slots", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"success":true,"n":2}`, rec.Body.String())

	serve(e, http.MethodGet, "/missing", nil)
	rec = serve(e, http.MethodGet, "/missing", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "only 200s are stored")
	assert.Equal(t, 4, calls)
}

func TestResponseCache_RedisDownServesFresh(t *testing.T) {
	mr, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache"}, rdb)
	e := echo.New()
	e.GET("/slots", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") }, rc.Middleware())

	mr.Close()
	rec := serve(e, http.MethodGet, "/slots", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestTokenBucket_RejectsWhenEmpty(t *testing.T) {
	_, rdb := newRedis(t)
	limit := NewTokenBucket(config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute,
		TTL: 5 * time.Minute, Prefix: "rl", KeyStrategy: "ip",
	}, rdb)

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, limit)
	from := func(ip string) http.Header { return http.Header{echo.HeaderXRealIP: {ip}} }

	for want := 1; want >= 0; want-- {
		rec := serve(e, http.MethodGet, "/x", from("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(want), rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := serve(e, http.MethodGet, "/x", from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.True(t, retry >= 1 && retry <= 60, "retry after %d", retry)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = serve(e, http.MethodGet, "/x", from("10.0.0.2"))
	assert.Equal(t, http.StatusOK, rec.Code, "buckets are per key")
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	limit := NewTokenBucket(config.RateLimitConfig{
		Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: 5 * time.Minute, Prefix: "rl",
	}, rdb)
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, limit)

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x", nil).Code)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"success":true}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"success":true}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0xff, 0, 0, 0})
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("cache", 0, "GET", "/api/tee-times/Pine%20Valley/18H", "")
	assert.Equal(t, a, cacheKey("cache", 0, "GET", "/api/tee-times/Pine%20Valley/18H", ""))
	assert.NotEqual(t, a, cacheKey("cache", 1, "GET", "/api/tee-times/Pine%20Valley/18H", ""), "generation bump changes the key")
	assert.NotEqual(t, a, cacheKey("cache", 0, "GET", "/api/tee-times/Pine%20Valley/9H", ""))
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated)
	assert.Equal(t, "abcdef", rec.Body.String(), "client still gets the full body")
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/bookings")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:10.0.0.9:user:anon:route:POST /api/bookings", buildRateKey(cfg, c))

	c.Set(ctxUserID, "u1")
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:u1", buildRateKey(cfg, c))
}

func TestParseBucketResult(t *testing.T) {
	allowed, remaining, retry, ok := parseBucketResult([]interface{}{int64(0), int64(0), int64(2500)})
	require.True(t, ok)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, 3, retryAfterSeconds(retry))

	_, _, _, ok = parseBucketResult("nope")
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ping", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("inside")
		return c.String(http.StatusOK, "pong")
	})

	rec := serve(e, http.MethodGet, "/ping", http.Header{echo.HeaderXRequestID: {"rid-1"}})
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	out := buf.String()
	assert.Contains(t, out, `"message":"inside"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"status":200`)
}
