package middleware

import (
	"log"
	"net/http"

	"sitepulse/api/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the ingest middleware chain.
const (
	CtxProjectID = "project_id"
	CtxSessionID = "session_id"
)

// OriginResolver is the read side of the origin registry.
type OriginResolver interface {
	Resolve(projectID string) (string, bool)
}

// IngestTokenRequired verifies the access token carried in the request
// path and stores the resolved project id in the context. Every failure
// mode collapses to a generic 403; the cause stays in server logs.
func IngestTokenRequired(codec *utils.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := codec.Verify(c.Param("token"))
		if err != nil {
			log.Printf("IngestTokenRequired: token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(CtxProjectID, projectID)
		c.Next()
	}
}

// ProjectCORS enforces per-project cross-origin policy. A project absent
// from the registry is a hard 404, never a silent allow-all; a declared
// origin other than the registered one is a hard 403. Responses echo the
// registered origin with credentials enabled so the tag script's
// cookie-bearing requests work cross-origin.
func ProjectCORS(resolver OriginResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.GetString(CtxProjectID)

		origin, ok := resolver.Resolve(projectID)
		if !ok {
			log.Printf("ProjectCORS: no registered origin for project %s", projectID)
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		if declared := c.GetHeader("Origin"); declared != "" && declared != origin {
			log.Printf("ProjectCORS: origin %q does not match registration for project %s", declared, projectID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Writer.Header().Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SessionRequired demands the session cookie minted by the load handler.
// The load event itself is exempt: it is the call that establishes the
// session in the first place.
func SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("eventType") == "load" {
			c.Next()
			return
		}

		sessionID, err := c.Cookie(utils.SessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid session"})
			return
		}

		c.Set(CtxSessionID, sessionID)
		c.Next()
	}
}
