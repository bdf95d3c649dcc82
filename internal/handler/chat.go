package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/service"
)

type ChatHandler struct {
	Assistant *service.ChatAssistant
}

func NewChatHandler(a *service.ChatAssistant) *ChatHandler {
	return &ChatHandler{Assistant: a}
}

// Reply handles POST /api/chat.
func (h *ChatHandler) Reply(c echo.Context) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	answer, err := h.Assistant.Reply(c.Request().Context(), req.Prompt)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "response": answer})
}
