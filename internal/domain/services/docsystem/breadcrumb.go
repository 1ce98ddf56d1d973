package docsystem

import (
	"context"

	"dealdesk/internal/domain/models/docsystem"
)

// BreadcrumbResolver reconstructs the named path from a deal root to a node
type BreadcrumbResolver interface {
	// Resolve returns the ancestor path root-first, ending with the node itself.
	// Fails with domain.ErrCycle when the parent chain exceeds the depth bound.
	Resolve(ctx context.Context, nodeID string) ([]docsystem.Crumb, error)
}
