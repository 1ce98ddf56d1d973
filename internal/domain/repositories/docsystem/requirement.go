package docsystem

import (
	"context"

	"dealdesk/internal/domain/models/docsystem"
)

// RequirementRepository defines data access operations for requirements.
// Status is never persisted; implementations call RefreshStatus on every read.
type RequirementRepository interface {
	// Create inserts a requirement; a duplicate (category, name) in the
	// same deal fails with domain.ErrConflict
	Create(ctx context.Context, req *docsystem.Requirement) error

	GetByID(ctx context.Context, id string) (*docsystem.Requirement, error)

	// GetForUpdate retrieves a requirement and locks it until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id string) (*docsystem.Requirement, error)

	// Update persists name, category, description, is_required, uploaded_node_id and updated_at
	Update(ctx context.Context, req *docsystem.Requirement) error

	Delete(ctx context.Context, id string) error

	// ListByDeal lists requirements ordered by category then name
	ListByDeal(ctx context.Context, dealID string) ([]docsystem.Requirement, error)

	// ListByUploadedNode lists requirements linked to the given node
	ListByUploadedNode(ctx context.Context, nodeID string) ([]docsystem.Requirement, error)

	// Exists reports whether the deal already has a requirement with this category and name
	Exists(ctx context.Context, dealID, category, name string) (bool, error)

	// LockDeal serializes checklist seeding within a deal for the rest of
	// the surrounding transaction
	LockDeal(ctx context.Context, dealID string) error
}
