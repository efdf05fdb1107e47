package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/export"
	"github.com/nestfinance/nest-core/internal/testutil"
)

func TestExportHandler_Export(t *testing.T) {
	e := echo.New()
	sessions := newTestSessions(t)
	uploader := testutil.NewMockUploader()
	h := NewExportHandler(sessions, export.NewExporter(uploader))

	waitReady(t, sessions, "alice")

	var resp ExportResponse
	require.Eventually(t, func() bool {
		c, rec := newRequest(e, http.MethodPost, "/api/export", "", "alice")
		if err := h.Export(c); err != nil || rec.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(rec.Body.Bytes(), &resp) == nil
	}, time.Second, 10*time.Millisecond)

	assert.Contains(t, resp.URL, "exports/alice/")
	assert.NotEmpty(t, uploader.Objects)
}

func TestExportHandler_Unconfigured(t *testing.T) {
	e := echo.New()
	sessions := newTestSessions(t)
	h := NewExportHandler(sessions, nil)

	c, rec := newRequest(e, http.MethodPost, "/api/export", "", "alice")
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportHandler_RequiresAuthentication(t *testing.T) {
	e := echo.New()
	sessions := newTestSessions(t)
	uploader := testutil.NewMockUploader()
	h := NewExportHandler(sessions, export.NewExporter(uploader))

	c, rec := newRequest(e, http.MethodPost, "/api/export", "", "")
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
