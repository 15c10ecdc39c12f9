package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver map[string]string

func (f fakeResolver) Resolve(projectID string) (string, bool) {
	origin, ok := f[projectID]
	return origin, ok
}

func newTestRouter(codec *utils.TokenCodec, resolver OriginResolver) *gin.Engine {
	r := gin.New()
	g := r.Group("/:token", IngestTokenRequired(codec), ProjectCORS(resolver))
	g.POST("/:eventType", SessionRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"projectId": c.GetString(CtxProjectID),
			"sessionId": c.GetString(CtxSessionID),
		})
	})
	g.OPTIONS("/:eventType", func(c *gin.Context) {})
	return r
}

func TestIngestTokenRequiredRejectsInvalidToken(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	r := newTestRouter(codec, fakeResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/garbage/load", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectCORSUnknownProject(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("project-without-origin")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/"+token+"/load", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectCORSOriginMismatch(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("p1")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{"p1": "https://registered.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/"+token+"/load", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectCORSMatchingOrigin(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("p1")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{"p1": "https://registered.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/"+token+"/load", nil)
	req.Header.Set("Origin", "https://registered.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://registered.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestProjectCORSPreflight(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("p1")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{"p1": "https://registered.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/"+token+"/pageView", nil)
	req.Header.Set("Origin", "https://registered.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://registered.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionRequiredMissingCookie(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("p1")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{"p1": "https://registered.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/"+token+"/pageView", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionRequiredWithCookie(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("p1")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{"p1": "https://registered.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/"+token+"/pageView", nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: "session-123"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session-123")
}

func TestSessionRequiredSkipsLoad(t *testing.T) {
	codec := utils.NewTokenCodec([]byte("secret"))
	token, err := codec.Issue("p1")
	require.NoError(t, err)

	r := newTestRouter(codec, fakeResolver{"p1": "https://registered.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/"+token+"/load", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
