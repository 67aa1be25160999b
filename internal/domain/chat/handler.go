// Package chat exposes the generative-text assistant over HTTP.
package chat

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Generator produces a response for a free-text prompt. Satisfied by
// *assistant.Client. Degradation (backup model, static apology) happens
// inside the generator, so the handler never surfaces a 5xx for it.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

type Handler struct {
	gen Generator
}

func NewHandler(gen Generator) *Handler {
	return &Handler{gen: gen}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Status)
	g.POST("/bot1", h.Ask)
}

type askBody struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	User     string `json:"user"`
	Response string `json:"response"`
}

func (h *Handler) Status(c echo.Context) error {
	return c.String(http.StatusOK, "chat service is running")
}

func (h *Handler) Ask(c echo.Context) error {
	var body askBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Prompt == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "prompt is required"})
	}

	text := h.gen.Generate(c.Request().Context(), body.Prompt)
	return c.JSON(http.StatusOK, askResponse{User: body.Prompt, Response: text})
}
