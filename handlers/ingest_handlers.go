package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"sitepulse/api/middleware"
	"sitepulse/api/models"
	"sitepulse/api/store"
	"sitepulse/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EntryInserter is the slice of the entry store the ingest path needs.
type EntryInserter interface {
	InsertEntry(ctx context.Context, entry models.Entry) error
}

// ProjectGetter resolves projects for token issuance.
type ProjectGetter interface {
	GetProjectByID(ctx context.Context, projectID string) (*models.Project, error)
}

type IngestHandlers struct {
	Entries  EntryInserter
	Projects ProjectGetter
	Codec    *utils.TokenCodec
}

func NewIngestHandlers(entries EntryInserter, projects ProjectGetter, codec *utils.TokenCodec) *IngestHandlers {
	return &IngestHandlers{
		Entries:  entries,
		Projects: projects,
		Codec:    codec,
	}
}

// IssueToken mints an ingest access token for a project. The caller must
// be an authenticated dashboard user whose organization owns the project;
// there is no anonymous issuance path.
func (h *IngestHandlers) IssueToken(c *gin.Context) {
	projectID := c.Param("projectId")
	organizationID := c.GetString("organization_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	project, err := h.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		log.Printf("IssueToken: failed to resolve project %s: %v", projectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve project"})
		return
	}

	if project.OrganizationID != organizationID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Project belongs to another organization"})
		return
	}

	token, err := h.Codec.Issue(project.ProjectID)
	if err != nil {
		log.Printf("IssueToken: failed to sign token for project %s: %v", projectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RecordEvent persists one event per call. The token and CORS middleware
// have already resolved the project; for non-load events the session
// middleware has already demanded the cookie. The payload is stored
// verbatim: event bodies are schemaless by design.
func (h *IngestHandlers) RecordEvent(c *gin.Context) {
	entryType, err := models.ParseEntryType(c.Param("eventType"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type"})
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		log.Printf("RecordEvent: failed to read body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(data) == 0 {
		data = []byte("{}")
	} else if !json.Valid(data) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var sessionID string
	if entryType == models.EntryTypeLoad {
		sessionID = utils.NewSessionID()
	} else {
		sessionID = c.GetString(middleware.CtxSessionID)
	}

	entry := models.Entry{
		EntryID:   uuid.New().String(),
		ProjectID: c.GetString(middleware.CtxProjectID),
		EntryType: entryType,
		SessionID: &sessionID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Entries.InsertEntry(ctx, entry); err != nil {
		log.Printf("RecordEvent: failed to insert %s entry for project %s: %v", entryType, entry.ProjectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event"})
		return
	}

	if entryType == models.EntryTypeLoad {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(utils.SessionCookieName, sessionID, 0, "/", "", false, false)
	}

	c.Status(http.StatusCreated)
}
