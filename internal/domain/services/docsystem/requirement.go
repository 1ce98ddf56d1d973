package docsystem

import (
	"context"

	"dealdesk/internal/domain/models/docsystem"
)

// RequirementTracker maintains the checklist of expected documents per deal
type RequirementTracker interface {
	CreateRequirement(ctx context.Context, req *CreateRequirementRequest) (*docsystem.Requirement, error)

	GetRequirement(ctx context.Context, requirementID string) (*docsystem.Requirement, error)

	// ListRequirements orders by category then name
	ListRequirements(ctx context.Context, dealID string) ([]docsystem.Requirement, error)

	// LinkUpload points a requirement at a file node of the same deal
	LinkUpload(ctx context.Context, requirementID, nodeID string) (*docsystem.Requirement, error)

	// Unlink clears the uploaded node and recomputes status
	Unlink(ctx context.Context, requirementID string) (*docsystem.Requirement, error)

	// UnlinkNode unlinks every requirement that references nodeID
	UnlinkNode(ctx context.Context, nodeID string) ([]docsystem.Requirement, error)

	// SetRequired overrides is_required; an uploaded requirement stays uploaded
	SetRequired(ctx context.Context, requirementID string, isRequired bool) (*docsystem.Requirement, error)

	DeleteRequirement(ctx context.Context, requirementID string) error

	// SeedDefaults inserts the standard catalog atomically, skipping entries
	// whose category and name already exist, and returns the full list
	SeedDefaults(ctx context.Context, dealID string) ([]docsystem.Requirement, error)

	Summarize(ctx context.Context, dealID string) (*docsystem.RequirementSummary, error)
}

// CreateRequirementRequest represents a requirement creation request
type CreateRequirementRequest struct {
	DealID      string `json:"-"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	IsRequired  bool   `json:"is_required"`
}
