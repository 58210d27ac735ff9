package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adminforge/backoffice-api/internal/models"
)

const (
	contextAuditTargetKey  = "auditTargetID"
	contextAuditDetailsKey = "auditDetails"
)

// AuditRecorder accepts audit entries for background persistence.
type AuditRecorder interface {
	Record(entry models.AuditLog)
}

// TargetResolver extracts the audit target id and optional details from a
// completed request. Returning a nil id is valid for actions without a
// concrete target.
type TargetResolver func(c *gin.Context) (*string, json.RawMessage)

// PathParamTarget resolves the audit target from a route parameter.
func PathParamTarget(param string) TargetResolver {
	return func(c *gin.Context) (*string, json.RawMessage) {
		if v := c.Param(param); v != "" {
			return &v, ContextDetails(c)
		}
		return ContextTarget(c), ContextDetails(c)
	}
}

// SetAuditTarget lets a handler hand the created or affected resource id to
// the audit layer when it is not present in the route.
func SetAuditTarget(c *gin.Context, id string) {
	c.Set(contextAuditTargetKey, id)
}

// SetAuditDetails attaches a structured detail payload to the pending audit
// entry. Marshal failures drop the details silently.
func SetAuditDetails(c *gin.Context, details interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		return
	}
	c.Set(contextAuditDetailsKey, json.RawMessage(payload))
}

// ContextTarget reads a target id previously stored by the handler.
func ContextTarget(c *gin.Context) *string {
	if v, ok := c.Get(contextAuditTargetKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return &id
		}
	}
	return nil
}

// ContextDetails reads details previously stored by the handler.
func ContextDetails(c *gin.Context) json.RawMessage {
	if v, ok := c.Get(contextAuditDetailsKey); ok {
		if details, ok := v.(json.RawMessage); ok {
			return details
		}
	}
	return nil
}

// Audit records exactly one audit entry after the wrapped handler succeeds.
// The request outcome decides whether to record at all: any response status
// of 400 or above produces no entry. Recording happens after the response is
// written and never alters it.
func Audit(recorder AuditRecorder, action, targetType string, resolver TargetResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		user, ok := CurrentUser(c)
		if !ok {
			return
		}

		var targetID *string
		var details json.RawMessage
		if resolver != nil {
			targetID, details = resolver(c)
		} else {
			targetID = ContextTarget(c)
			details = ContextDetails(c)
		}

		recorder.Record(models.AuditLog{
			ActorID:    user.ID,
			Action:     action,
			TargetType: targetType,
			TargetID:   targetID,
			Details:    details,
		})
	}
}
