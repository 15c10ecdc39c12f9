package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"sitepulse/api/models"
	"sitepulse/api/store"
	"sitepulse/api/utils"

	"github.com/gin-gonic/gin"
)

// EntryAggregator is the read side of the entry store.
type EntryAggregator interface {
	CountByHour(ctx context.Context, projectID string, entryType models.EntryType, start, end time.Time) ([]models.HourlyCount, error)
	KeyNumbers(ctx context.Context, projectID string, start, end time.Time) (models.KeyNumbers, error)
}

// ProjectReader resolves projects for the dashboard surface.
type ProjectReader interface {
	GetProjectBySlug(ctx context.Context, slug, organizationID string) (*models.Project, error)
	ListProjectsByOrganization(ctx context.Context, organizationID string) ([]models.Project, error)
}

type StatsHandlers struct {
	Entries  EntryAggregator
	Projects ProjectReader
}

func NewStatsHandlers(entries EntryAggregator, projects ProjectReader) *StatsHandlers {
	return &StatsHandlers{
		Entries:  entries,
		Projects: projects,
	}
}

func (h *StatsHandlers) ListProjects(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	projects, err := h.Projects.ListProjectsByOrganization(ctx, organizationID)
	if err != nil {
		log.Printf("ListProjects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *StatsHandlers) GetProject(c *gin.Context) {
	project, ok := h.resolveProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetHourlySeries returns the gap-filled hourly event counts driving the
// dashboard bar chart. One bucket per hour in [start, end), zeros
// included; the chart never has to handle missing hours.
func (h *StatsHandlers) GetHourlySeries(c *gin.Context) {
	project, ok := h.resolveProject(c)
	if !ok {
		return
	}

	entryTypeParam := c.DefaultQuery("entryType", string(models.EntryTypeLoad))
	entryType, err := models.ParseEntryType(entryTypeParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type"})
		return
	}

	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Buckets are hour-aligned; an unaligned start would produce a series
	// whose boundaries never match toStartOfHour.
	start = start.Truncate(time.Hour)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	series, err := h.Entries.CountByHour(ctx, project.ProjectID, entryType, start, end)
	if err != nil {
		log.Printf("GetHourlySeries: project %s: %v", project.ProjectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}

	c.JSON(http.StatusOK, series)
}

// GetKeyNumbers returns the headline figures: total visits, unique
// visitors, average session duration.
func (h *StatsHandlers) GetKeyNumbers(c *gin.Context) {
	project, ok := h.resolveProject(c)
	if !ok {
		return
	}

	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	keyNumbers, err := h.Entries.KeyNumbers(ctx, project.ProjectID, start, end)
	if err != nil {
		log.Printf("GetKeyNumbers: project %s: %v", project.ProjectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve key numbers"})
		return
	}

	c.JSON(http.StatusOK, keyNumbers)
}

func (h *StatsHandlers) resolveProject(c *gin.Context) (*models.Project, bool) {
	slug := c.Param("slug")
	organizationID := c.GetString("organization_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	project, err := h.Projects.GetProjectBySlug(ctx, slug, organizationID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("resolveProject: slug %s: %v", slug, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve project"})
		}
		return nil, false
	}

	return project, true
}
