package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partmatch/internal/adapter/api"
	"partmatch/internal/domain/service"
	"partmatch/internal/usecase"
)

type stubLLM struct {
	reply string
	turns []service.ChatTurn
}

func (s *stubLLM) Complete(ctx context.Context, turns []service.ChatTurn) (string, error) {
	s.turns = turns
	return s.reply, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body, uid string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	return c, rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHelpBot_ReturnsBarePayload(t *testing.T) {
	llm := &stubLLM{reply: "Tap Promote on your listing."}
	h := NewFunctionHandler(usecase.NewHelpBotUseCase(llm, nil, nil, nil), nil)
	e := newTestEcho()

	c, rec := postJSON(e, "/v1/functions/help-bot", `{
		"message": "How do I boost?",
		"userId": "spoofed",
		"conversationHistory": [{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}]
	}`, "u1")

	require.NoError(t, h.HelpBot(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response": "Tap Promote on your listing.", "escalated": false}`, rec.Body.String())
	require.Len(t, llm.turns, 4)
	assert.Equal(t, "hello", llm.turns[2].Content)
}

func TestHelpBot_RequiresMessage(t *testing.T) {
	h := NewFunctionHandler(usecase.NewHelpBotUseCase(&stubLLM{}, nil, nil, nil), nil)
	e := newTestEcho()

	c, rec := postJSON(e, "/v1/functions/help-bot", `{"conversationHistory": []}`, "u1")
	require.NoError(t, h.HelpBot(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestHelpBot_RequiresAuthentication(t *testing.T) {
	h := NewFunctionHandler(usecase.NewHelpBotUseCase(&stubLLM{}, nil, nil, nil), nil)
	e := newTestEcho()

	c, rec := postJSON(e, "/v1/functions/help-bot", `{"message": "hi"}`, "")
	require.NoError(t, h.HelpBot(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotify_RejectsUnknownType(t *testing.T) {
	h := NewFunctionHandler(nil, usecase.NewDispatchUseCase(nil, nil, nil, nil, nil, nil))
	e := newTestEcho()

	c, rec := postJSON(e, "/v1/functions/notify", `{"type": "promo_blast"}`, "u1")
	require.NoError(t, h.Notify(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestNotify_RejectsMissingID(t *testing.T) {
	h := NewFunctionHandler(nil, usecase.NewDispatchUseCase(nil, nil, nil, nil, nil, nil))
	e := newTestEcho()

	c, rec := postJSON(e, "/v1/functions/notify", `{"type": "new_offer", "requestId": "r1"}`, "u1")
	require.NoError(t, h.Notify(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}
