package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubGenerator struct {
	response string
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) string {
	s.prompts = append(s.prompts, prompt)
	return s.response
}

func postJSON(e *echo.Echo, body string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/bot1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestAsk(t *testing.T) {
	gen := &stubGenerator{response: "Drink plenty of water."}
	h := NewHandler(gen)
	e := echo.New()

	rec, c := postJSON(e, `{"prompt":"what helps a sore throat?"}`)
	if err := h.Ask(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User != "what helps a sore throat?" {
		t.Errorf("expected prompt echoed back, got %q", resp.User)
	}
	if resp.Response != gen.response {
		t.Errorf("expected %q, got %q", gen.response, resp.Response)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("expected a single generation call, got %d", len(gen.prompts))
	}
}

func TestAskMissingPrompt(t *testing.T) {
	gen := &stubGenerator{}
	h := NewHandler(gen)
	e := echo.New()

	rec, c := postJSON(e, `{}`)
	if err := h.Ask(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(gen.prompts) != 0 {
		t.Error("generator should not be called for an empty prompt")
	}
}

func TestStatus(t *testing.T) {
	h := NewHandler(&stubGenerator{})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/chat/", nil)
	rec := httptest.NewRecorder()
	if err := h.Status(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
