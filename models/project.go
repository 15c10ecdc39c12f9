package models

import "time"

// Project is one tracked site (a tenant of the ingest pipeline). Origin is
// nullable: a project without a configured origin cannot ingest at all.
type Project struct {
	ProjectID      string    `json:"projectId"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	LogoURL        *string   `json:"logoUrl,omitempty"`
	Origin         *string   `json:"origin,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Organization struct {
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	LogoURL        *string   `json:"logoUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
