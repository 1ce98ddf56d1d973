package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"dealdesk/internal/config"
	"dealdesk/internal/domain"
	models "dealdesk/internal/domain/models/docsystem"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
)

type breadcrumbResolver struct {
	nodeRepo docsysRepo.NodeRepository
	maxDepth int
	logger   *slog.Logger
}

// NewBreadcrumbResolver creates a resolver that gives up after maxDepth ancestors
func NewBreadcrumbResolver(nodeRepo docsysRepo.NodeRepository, maxDepth int, logger *slog.Logger) docsysSvc.BreadcrumbResolver {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxTreeDepth
	}
	return &breadcrumbResolver{
		nodeRepo: nodeRepo,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// Resolve walks parent pointers up to the root and returns the path root-first
func (r *breadcrumbResolver) Resolve(ctx context.Context, nodeID string) ([]models.Crumb, error) {
	node, err := r.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	crumbs := []models.Crumb{{ID: node.ID, Name: node.Name}}
	seen := map[string]struct{}{node.ID: {}}

	for node.ParentID != nil {
		parentID := *node.ParentID
		if _, ok := seen[parentID]; ok || len(crumbs) >= r.maxDepth {
			r.logger.Error("broken parent chain",
				"node_id", nodeID,
				"at", parentID,
				"depth", len(crumbs),
			)
			return nil, &domain.CycleError{
				Message: fmt.Sprintf("parent chain of node %s does not reach a root", nodeID),
				NodeID:  nodeID,
			}
		}
		seen[parentID] = struct{}{}

		node, err = r.nodeRepo.GetByID(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("resolve ancestor %s: %w", parentID, err)
		}
		crumbs = append(crumbs, models.Crumb{ID: node.ID, Name: node.Name})
	}

	slices.Reverse(crumbs)
	return crumbs, nil
}
