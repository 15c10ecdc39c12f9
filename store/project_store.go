package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sitepulse/api/models"
)

// ErrProjectNotFound is returned when a lookup matches no project.
var ErrProjectNotFound = errors.New("project not found")

// ProjectStore reads project records from Postgres. The ingest core never
// mutates projects; they are provisioned administratively.
type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// LoadOrigins bulk-reads every project with a configured origin. Projects
// whose origin is NULL are deliberately excluded so the registry treats
// them as unregistered.
func (s *ProjectStore) LoadOrigins(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT project_id, origin
		FROM projects
		WHERE origin IS NOT NULL;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load project origins: %w", err)
	}
	defer rows.Close()

	origins := make(map[string]string)
	for rows.Next() {
		var projectID, origin string
		if err := rows.Scan(&projectID, &origin); err != nil {
			return nil, fmt.Errorf("failed to scan project origin: %w", err)
		}
		origins[projectID] = origin
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error loading project origins: %w", err)
	}

	return origins, nil
}

func (s *ProjectStore) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT project_id, organization_id, name, slug, logo_url, origin, created_at
		FROM projects
		WHERE project_id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&project.ProjectID,
		&project.OrganizationID,
		&project.Name,
		&project.Slug,
		&project.LogoURL,
		&project.Origin,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by id: %w", err)
	}

	return project, nil
}

// GetProjectBySlug resolves a project by its slug within one
// organization. Slugs are only unique per organization.
func (s *ProjectStore) GetProjectBySlug(ctx context.Context, slug, organizationID string) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT project_id, organization_id, name, slug, logo_url, origin, created_at
		FROM projects
		WHERE slug = $1 AND organization_id = $2;
	`
	err := s.db.QueryRowContext(ctx, query, slug, organizationID).Scan(
		&project.ProjectID,
		&project.OrganizationID,
		&project.Name,
		&project.Slug,
		&project.LogoURL,
		&project.Origin,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by slug: %w", err)
	}

	return project, nil
}

func (s *ProjectStore) ListProjectsByOrganization(ctx context.Context, organizationID string) ([]models.Project, error) {
	query := `
		SELECT project_id, organization_id, name, slug, logo_url, origin, created_at
		FROM projects
		WHERE organization_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ProjectID,
			&project.OrganizationID,
			&project.Name,
			&project.Slug,
			&project.LogoURL,
			&project.Origin,
			&project.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing projects: %w", err)
	}

	return projects, nil
}
