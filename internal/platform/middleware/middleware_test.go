package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runMiddleware(mw echo.MiddlewareFunc, handler echo.HandlerFunc, mutate func(*http.Request)) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	return rec, err
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	rec, err := runMiddleware(RequestID(), func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return c.NoContent(http.StatusOK)
	}, nil)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if seen == "" {
		t.Error("expected a generated request id on the context")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Error("expected request id echoed in response header")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	rec, err := runMiddleware(RequestID(), func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, func(req *http.Request) {
		req.Header.Set(RequestIDHeader, "caller-supplied")
	})
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) != "caller-supplied" {
		t.Errorf("expected caller-supplied id preserved, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	_, err := runMiddleware(Recovery(zerolog.Nop()), func(c echo.Context) error {
		panic("boom")
	}, nil)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError from panic, got %v", err)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	rec, err := runMiddleware(Logger(zerolog.Nop()), func(c echo.Context) error {
		return c.String(http.StatusTeapot, "short and stout")
	}, nil)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected handler status preserved, got %d", rec.Code)
	}
}

func TestRateLimitEnforcesBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	for i := 0; i < 2; i++ {
		if _, err := do(); err != nil {
			t.Fatalf("request %d should pass, got %v", i, err)
		}
	}

	_, err := do()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %v", err)
	}
}

func TestRateLimitIsolatesClients(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do := func(addr string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	if err := do("10.0.0.1:1"); err != nil {
		t.Fatalf("first client should pass: %v", err)
	}
	if err := do("10.0.0.1:1"); err == nil {
		t.Fatal("first client should be limited")
	}
	if err := do("10.0.0.2:1"); err != nil {
		t.Errorf("second client should not share the first client's bucket: %v", err)
	}
}
