package docsystem

import (
	"context"

	"dealdesk/internal/domain/models/docsystem"
)

// NodeRepository defines data access operations for tree nodes
type NodeRepository interface {
	// Create inserts a node; ID is assigned if empty
	Create(ctx context.Context, node *docsystem.Node) error

	// GetByID retrieves a node by ID
	GetByID(ctx context.Context, id string) (*docsystem.Node, error)

	// GetForUpdate retrieves a node and locks it until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id string) (*docsystem.Node, error)

	// Update persists name, parent, file attributes and updated_at
	Update(ctx context.Context, node *docsystem.Node) error

	// Delete removes a single node; children must already be gone
	Delete(ctx context.Context, id string) error

	// ListChildren lists direct children, folders first then most recently updated
	ListChildren(ctx context.Context, dealID string, parentID *string) ([]docsystem.Node, error)

	// CountChildren counts direct children of a folder
	CountChildren(ctx context.Context, id string) (int, error)

	// ListByDeal retrieves every node of a deal (flat list)
	ListByDeal(ctx context.Context, dealID string) ([]docsystem.Node, error)

	// LockDeal serializes structural mutations (move, delete) within a deal
	// for the rest of the surrounding transaction
	LockDeal(ctx context.Context, dealID string) error
}
