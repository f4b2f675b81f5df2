package history_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/abdullahdev00/video-downloader/internal/store"
)

func seedHistory(t *testing.T) (*store.Memory, store.HistoryRecord) {
	t.Helper()
	mem := store.NewMemory()
	rec := store.HistoryRecord{
		ID:         uuid.New(),
		URL:        "https://vimeo.com/76979871",
		Platform:   "vimeo",
		Title:      "The New Vimeo Player",
		Quality:    "1080p HD",
		Container:  "mp4",
		ResolvedAt: time.Now().UTC(),
	}
	require.NoError(t, mem.Append(context.Background(), rec))
	return mem, rec
}

func newContext(t *testing.T, method, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleIndex(t *testing.T) {
	mem, seeded := seedHistory(t)

	c, rec := newContext(t, http.MethodGet, "/api/history")
	require.NoError(t, HandleIndex(mem)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, seeded.ID.String(), resp[0].ID)
	require.Equal(t, "The New Vimeo Player", resp[0].Title)
	require.Equal(t, "vimeo", resp[0].Platform)
}

func TestHandleIndexEmpty(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/api/history")
	require.NoError(t, HandleIndex(store.NewMemory())(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleDelete(t *testing.T) {
	mem, seeded := seedHistory(t)

	c, rec := newContext(t, http.MethodDelete, "/api/history/"+seeded.ID.String())
	c.SetParamNames("id")
	c.SetParamValues(seeded.ID.String())
	require.NoError(t, HandleDelete(mem)(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	recs, err := mem.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestHandleDeleteUnknownID(t *testing.T) {
	mem, _ := seedHistory(t)

	other := uuid.New()
	c, _ := newContext(t, http.MethodDelete, "/api/history/"+other.String())
	c.SetParamNames("id")
	c.SetParamValues(other.String())

	err := HandleDelete(mem)(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestHandleDeleteBadID(t *testing.T) {
	c, _ := newContext(t, http.MethodDelete, "/api/history/nope")
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := HandleDelete(store.NewMemory())(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleClear(t *testing.T) {
	mem, _ := seedHistory(t)

	c, rec := newContext(t, http.MethodDelete, "/api/history")
	require.NoError(t, HandleClear(mem)(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	recs, err := mem.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, recs)
}
