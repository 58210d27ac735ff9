package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminforge/backoffice-api/internal/models"
)

type captureRecorder struct {
	entries []models.AuditLog
}

func (c *captureRecorder) Record(entry models.AuditLog) {
	c.entries = append(c.entries, entry)
}

func auditTestRouter(recorder AuditRecorder, resolver TargetResolver, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/things/:id",
		func(c *gin.Context) {
			c.Set(ContextUserKey, &models.User{ID: "actor-1"})
		},
		Audit(recorder, models.AuditActionUserUpdate, "user", resolver),
		handler)
	return r
}

func TestAuditRecordsExactlyOneEntryOnSuccess(t *testing.T) {
	recorder := &captureRecorder{}
	r := auditTestRouter(recorder, PathParamTarget("id"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things/t-9", nil))

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "actor-1", entry.ActorID)
	assert.Equal(t, models.AuditActionUserUpdate, entry.Action)
	assert.Equal(t, "user", entry.TargetType)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "t-9", *entry.TargetID)
}

func TestAuditSkipsFailedRequests(t *testing.T) {
	recorder := &captureRecorder{}
	r := auditTestRouter(recorder, PathParamTarget("id"), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "missing"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things/t-9", nil))

	assert.Empty(t, recorder.entries)
}

func TestAuditSkipsWithoutActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &captureRecorder{}
	r := gin.New()
	r.POST("/things/:id",
		Audit(recorder, models.AuditActionUserUpdate, "user", PathParamTarget("id")),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things/t-9", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.entries)
}

func TestAuditUsesContextTargetAndDetails(t *testing.T) {
	recorder := &captureRecorder{}
	r := auditTestRouter(recorder, nil, func(c *gin.Context) {
		SetAuditTarget(c, "created-1")
		SetAuditDetails(c, gin.H{"email": "new@example.com"})
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things/ignored", nil))

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "created-1", *entry.TargetID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(entry.Details, &details))
	assert.Equal(t, "new@example.com", details["email"])
}

func TestAuditDoesNotAlterResponse(t *testing.T) {
	recorder := &captureRecorder{}
	r := auditTestRouter(recorder, PathParamTarget("id"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"payload": "body"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things/t-9", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"payload":"body"}`, w.Body.String())
}
