package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dealdesk/internal/domain"
	models "dealdesk/internal/domain/models/docsystem"
	"dealdesk/internal/domain/repositories"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
)

// requirementTracker implements the RequirementTracker interface
type requirementTracker struct {
	requirementRepo docsysRepo.RequirementRepository
	nodeRepo        docsysRepo.NodeRepository
	txManager       repositories.TransactionManager
	catalog         Catalog
	logger          *slog.Logger
	now             func() time.Time
}

// NewRequirementTracker creates a new requirement tracker. A nil catalog
// seeds from DefaultCatalog.
func NewRequirementTracker(
	requirementRepo docsysRepo.RequirementRepository,
	nodeRepo docsysRepo.NodeRepository,
	txManager repositories.TransactionManager,
	catalog Catalog,
	logger *slog.Logger,
) docsysSvc.RequirementTracker {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &requirementTracker{
		requirementRepo: requirementRepo,
		nodeRepo:        nodeRepo,
		txManager:       txManager,
		catalog:         catalog,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateRequirement adds a checklist entry; status starts missing or recommended
func (t *requirementTracker) CreateRequirement(ctx context.Context, req *docsysSvc.CreateRequirementRequest) (*models.Requirement, error) {
	if err := validateCreateRequirement(req); err != nil {
		return nil, err
	}

	now := t.now()
	requirement := &models.Requirement{
		DealID:      req.DealID,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsRequired:  req.IsRequired,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := t.requirementRepo.Create(ctx, requirement); err != nil {
		return nil, err
	}

	t.logger.Info("requirement created",
		"id", requirement.ID,
		"deal_id", requirement.DealID,
		"category", requirement.Category,
		"name", requirement.Name,
	)

	return requirement, nil
}

// GetRequirement retrieves a single requirement
func (t *requirementTracker) GetRequirement(ctx context.Context, requirementID string) (*models.Requirement, error) {
	return t.requirementRepo.GetByID(ctx, requirementID)
}

// ListRequirements lists a deal's requirements by category then name
func (t *requirementTracker) ListRequirements(ctx context.Context, dealID string) ([]models.Requirement, error) {
	return t.requirementRepo.ListByDeal(ctx, dealID)
}

// LinkUpload marks a requirement as fulfilled by a file node. The node row
// is locked before the requirement row, the same order Delete takes them,
// so a concurrent delete either finishes first (NotFound here) or waits
// until the link is committed and then unlinks it.
func (t *requirementTracker) LinkUpload(ctx context.Context, requirementID, nodeID string) (*models.Requirement, error) {
	var requirement *models.Requirement
	err := t.txManager.ExecTx(ctx, func(ctx context.Context) error {
		node, err := t.nodeRepo.GetForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}

		requirement, err = t.requirementRepo.GetForUpdate(ctx, requirementID)
		if err != nil {
			return err
		}
		if !node.IsFile() {
			return &domain.ValidationError{Message: fmt.Sprintf("node %s is a folder; only files can fulfil a requirement", nodeID)}
		}
		if node.DealID != requirement.DealID {
			return &domain.ValidationError{Message: fmt.Sprintf("node %s belongs to another deal", nodeID)}
		}

		requirement.UploadedNodeID = &node.ID
		requirement.UpdatedAt = t.now()
		return t.requirementRepo.Update(ctx, requirement)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("requirement linked",
		"id", requirement.ID,
		"node_id", nodeID,
		"status", requirement.Status,
	)

	return requirement, nil
}

// Unlink clears the uploaded node of a requirement
func (t *requirementTracker) Unlink(ctx context.Context, requirementID string) (*models.Requirement, error) {
	var requirement *models.Requirement
	err := t.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		requirement, err = t.requirementRepo.GetForUpdate(ctx, requirementID)
		if err != nil {
			return err
		}
		if requirement.UploadedNodeID == nil {
			return nil
		}

		requirement.UploadedNodeID = nil
		requirement.UpdatedAt = t.now()
		return t.requirementRepo.Update(ctx, requirement)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("requirement unlinked", "id", requirement.ID, "status", requirement.Status)
	return requirement, nil
}

// UnlinkNode unlinks every requirement fulfilled by nodeID. Runs inside the
// caller's transaction when there is one.
func (t *requirementTracker) UnlinkNode(ctx context.Context, nodeID string) ([]models.Requirement, error) {
	var unlinked []models.Requirement
	err := t.txManager.ExecTx(ctx, func(ctx context.Context) error {
		linked, err := t.requirementRepo.ListByUploadedNode(ctx, nodeID)
		if err != nil {
			return err
		}

		now := t.now()
		for i := range linked {
			linked[i].UploadedNodeID = nil
			linked[i].UpdatedAt = now
			if err := t.requirementRepo.Update(ctx, &linked[i]); err != nil {
				return fmt.Errorf("unlink requirement %s: %w", linked[i].ID, err)
			}
		}
		unlinked = linked
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, requirement := range unlinked {
		t.logger.Info("requirement unlinked",
			"id", requirement.ID,
			"node_id", nodeID,
			"status", requirement.Status,
		)
	}

	return unlinked, nil
}

// SetRequired overrides is_required. Status is recomputed, so an uploaded
// requirement stays uploaded.
func (t *requirementTracker) SetRequired(ctx context.Context, requirementID string, isRequired bool) (*models.Requirement, error) {
	var requirement *models.Requirement
	err := t.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		requirement, err = t.requirementRepo.GetForUpdate(ctx, requirementID)
		if err != nil {
			return err
		}
		if requirement.IsRequired == isRequired {
			return nil
		}

		requirement.IsRequired = isRequired
		requirement.UpdatedAt = t.now()
		return t.requirementRepo.Update(ctx, requirement)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("requirement override",
		"id", requirement.ID,
		"is_required", requirement.IsRequired,
		"status", requirement.Status,
	)

	return requirement, nil
}

// DeleteRequirement removes a requirement; the linked node is untouched
func (t *requirementTracker) DeleteRequirement(ctx context.Context, requirementID string) error {
	if err := t.requirementRepo.Delete(ctx, requirementID); err != nil {
		return err
	}
	t.logger.Info("requirement deleted", "id", requirementID)
	return nil
}

// SeedDefaults inserts the catalog in one transaction, skipping entries the
// deal already has, and returns the deal's full requirement list. The deal's
// checklist lock is held across the check-then-insert.
func (t *requirementTracker) SeedDefaults(ctx context.Context, dealID string) ([]models.Requirement, error) {
	if dealID == "" {
		return nil, &domain.ValidationError{Message: "deal id is required"}
	}

	created, skipped := 0, 0
	err := t.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := t.requirementRepo.LockDeal(ctx, dealID); err != nil {
			return err
		}

		now := t.now()
		for _, entry := range t.catalog {
			exists, err := t.requirementRepo.Exists(ctx, dealID, entry.Category, entry.Name)
			if err != nil {
				return err
			}
			if exists {
				skipped++
				continue
			}

			requirement := &models.Requirement{
				DealID:      dealID,
				Name:        entry.Name,
				Category:    entry.Category,
				Description: entry.Description,
				IsRequired:  entry.IsRequired,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := t.requirementRepo.Create(ctx, requirement); err != nil {
				return fmt.Errorf("seed %s/%s: %w", entry.Category, entry.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("requirements seeded",
		"deal_id", dealID,
		"created", created,
		"skipped", skipped,
	)

	return t.requirementRepo.ListByDeal(ctx, dealID)
}

// Summarize counts a deal's requirements by status
func (t *requirementTracker) Summarize(ctx context.Context, dealID string) (*models.RequirementSummary, error) {
	requirements, err := t.requirementRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	summary := &models.RequirementSummary{DealID: dealID, Total: len(requirements)}
	for _, requirement := range requirements {
		switch requirement.Status {
		case models.RequirementUploaded:
			summary.Uploaded++
		case models.RequirementMissing:
			summary.Missing++
		case models.RequirementRecommended:
			summary.Recommended++
		}
	}

	return summary, nil
}
