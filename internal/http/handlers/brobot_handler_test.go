package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/services"
)

func TestAsk_ReturnsAnswer(t *testing.T) {
	var gotOwner, gotQ string
	svc := &stubBroBot{askFn: func(_ context.Context, owner, q string) (*services.Answer, error) {
		gotOwner, gotQ = owner, q
		return &services.Answer{
			Question: q,
			Source:   services.SourceCache,
			Payload:  domain.AnswerPayload{PimpQuestions: []string{"Blood supply?"}},
		}, nil
	}}
	r := newTestEngine(New(Deps{BroBot: svc}), "u1")

	w := doJSON(t, r, http.MethodPost, "/brobot/ask", AskRequest{Question: "femoral head"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "u1", gotOwner)
	assert.Equal(t, "femoral head", gotQ)

	var ans services.Answer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, services.SourceCache, ans.Source)
	assert.Equal(t, []string{"Blood supply?"}, ans.Payload.PimpQuestions)
}

func TestAsk_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{services.ErrEmptyPrompt, http.StatusBadRequest, ErrCodeEmptyPrompt},
		{services.ErrTooLong, http.StatusBadRequest, ErrCodePromptTooLong},
		{fmt.Errorf("%w: db down", services.ErrLookupFailed), http.StatusServiceUnavailable, ErrCodeLookupFailed},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := &stubBroBot{askFn: func(context.Context, string, string) (*services.Answer, error) {
				return nil, tc.err
			}}
			r := newTestEngine(New(Deps{BroBot: svc}), "u1")
			w := doJSON(t, r, http.MethodPost, "/brobot/ask", AskRequest{Question: "q"}, nil)
			assert.Equal(t, tc.status, w.Code)
			er := decodeError(t, w)
			assert.Equal(t, tc.code, er.Code)
			assert.NotEmpty(t, er.RequestID)
		})
	}
}

func TestAsk_BlankQuestionRejectedBeforeService(t *testing.T) {
	called := false
	svc := &stubBroBot{askFn: func(context.Context, string, string) (*services.Answer, error) {
		called = true
		return nil, nil
	}}
	r := newTestEngine(New(Deps{BroBot: svc}), "u1")

	for _, body := range []string{`{"question":"   "}`, `{}`, `not json`} {
		w := doJSON(t, r, http.MethodPost, "/brobot/ask", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.False(t, called)
}

func TestHistory_PaginationAndETag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotPage, gotSize int
	svc := &stubBroBot{historyFn: func(_ context.Context, owner string, page, size int) (*services.HistoryPage, error) {
		gotPage, gotSize = page, size
		return &services.HistoryPage{
			Items: []domain.CachedResponse{{ID: "r1", OwnerID: owner, QuestionText: "q", CreatedAt: now}},
			Total: 41,
			ETag:  `W/"brobot:u1:41:1"`,
		}, nil
	}}
	r := newTestEngine(New(Deps{BroBot: svc}), "u1")

	w := doJSON(t, r, http.MethodGet, "/brobot/history?page=2&page_size=500", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 100, gotSize)
	assert.Equal(t, `W/"brobot:u1:41:1"`, w.Header().Get("ETag"))

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, Pagination{Page: 2, PageSize: 100, Total: 41, TotalPages: 1, HasNext: false}, resp.Pagination)

	w = doJSON(t, r, http.MethodGet, "/brobot/history", nil, map[string]string{"If-None-Match": `W/"brobot:u1:41:1"`})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestHistory_EmptyIsArray(t *testing.T) {
	svc := &stubBroBot{historyFn: func(context.Context, string, int, int) (*services.HistoryPage, error) {
		return &services.HistoryPage{ETag: `W/"brobot:u1:0:0"`}, nil
	}}
	r := newTestEngine(New(Deps{BroBot: svc}), "u1")

	w := doJSON(t, r, http.MethodGet, "/brobot/history", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}

func TestHistory_Unauthenticated(t *testing.T) {
	svc := &stubBroBot{historyFn: func(context.Context, string, int, int) (*services.HistoryPage, error) {
		return nil, services.ErrUnauthenticated
	}}
	r := newTestEngine(New(Deps{BroBot: svc}), "")

	w := doJSON(t, r, http.MethodGet, "/brobot/history", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
