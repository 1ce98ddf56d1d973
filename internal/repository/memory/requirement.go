package memory

import (
	"context"
	"fmt"
	"sort"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models/docsystem"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

// RequirementRepository implements docsysRepo.RequirementRepository on a Store
type RequirementRepository struct {
	store *Store
}

// NewRequirementRepository creates a new requirement repository
func NewRequirementRepository(store *Store) docsysRepo.RequirementRepository {
	return &RequirementRepository{store: store}
}

func (r *RequirementRepository) Create(ctx context.Context, req *docsystem.Requirement) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if _, exists := r.store.requirements[req.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("requirement %s already exists", req.ID),
			ResourceType: "requirement",
			ResourceID:   req.ID,
		}
	}
	if r.hasName(req.DealID, req.Category, req.Name, "") {
		return duplicateRequirement(req)
	}
	if err := r.checkNode(req.UploadedNodeID); err != nil {
		return err
	}

	stored := *req
	stored.UploadedNodeID = cloneString(req.UploadedNodeID)
	r.store.requirements[req.ID] = stored
	req.RefreshStatus()
	return nil
}

func (r *RequirementRepository) GetByID(ctx context.Context, id string) (*docsystem.Requirement, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	req, ok := r.store.requirements[id]
	if !ok {
		return nil, fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}
	out := cloneRequirement(req)
	return &out, nil
}

// GetForUpdate is GetByID; the store mutex held by ExecTx already serializes writers
func (r *RequirementRepository) GetForUpdate(ctx context.Context, id string) (*docsystem.Requirement, error) {
	return r.GetByID(ctx, id)
}

func (r *RequirementRepository) Update(ctx context.Context, req *docsystem.Requirement) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	existing, ok := r.store.requirements[req.ID]
	if !ok {
		return fmt.Errorf("requirement %s: %w", req.ID, domain.ErrNotFound)
	}
	if r.hasName(existing.DealID, req.Category, req.Name, req.ID) {
		return duplicateRequirement(req)
	}
	if err := r.checkNode(req.UploadedNodeID); err != nil {
		return err
	}

	updated := *req
	updated.UploadedNodeID = cloneString(req.UploadedNodeID)
	updated.DealID = existing.DealID
	updated.CreatedAt = existing.CreatedAt
	r.store.requirements[req.ID] = updated
	req.RefreshStatus()
	return nil
}

func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.requirements[id]; !ok {
		return fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.requirements, id)
	return nil
}

// ListByDeal lists requirements ordered by category then name (byte-wise)
func (r *RequirementRepository) ListByDeal(ctx context.Context, dealID string) ([]docsystem.Requirement, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	reqs := make([]docsystem.Requirement, 0)
	for _, req := range r.store.requirements {
		if req.DealID == dealID {
			reqs = append(reqs, cloneRequirement(req))
		}
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Category != reqs[j].Category {
			return reqs[i].Category < reqs[j].Category
		}
		if reqs[i].Name != reqs[j].Name {
			return reqs[i].Name < reqs[j].Name
		}
		return reqs[i].ID < reqs[j].ID
	})
	return reqs, nil
}

func (r *RequirementRepository) ListByUploadedNode(ctx context.Context, nodeID string) ([]docsystem.Requirement, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	reqs := make([]docsystem.Requirement, 0)
	for _, req := range r.store.requirements {
		if req.UploadedNodeID != nil && *req.UploadedNodeID == nodeID {
			reqs = append(reqs, cloneRequirement(req))
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

func (r *RequirementRepository) Exists(ctx context.Context, dealID, category, name string) (bool, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.hasName(dealID, category, name, ""), nil
}

// LockDeal is a no-op: transactions already hold the store-wide lock
func (r *RequirementRepository) LockDeal(ctx context.Context, dealID string) error {
	return nil
}

// hasName mirrors the unique index on (deal_id, category, name)
func (r *RequirementRepository) hasName(dealID, category, name, exceptID string) bool {
	for id, req := range r.store.requirements {
		if id != exceptID && req.DealID == dealID && req.Category == category && req.Name == name {
			return true
		}
	}
	return false
}

func duplicateRequirement(req *docsystem.Requirement) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("requirement %q already exists in category %q", req.Name, req.Category),
		ResourceType: "requirement",
		ResourceID:   req.ID,
	}
}

// checkNode mirrors the foreign key on uploaded_node_id
func (r *RequirementRepository) checkNode(nodeID *string) error {
	if nodeID == nil {
		return nil
	}
	if _, ok := r.store.nodes[*nodeID]; !ok {
		return fmt.Errorf("node %s: %w", *nodeID, domain.ErrNotFound)
	}
	return nil
}

func cloneRequirement(req docsystem.Requirement) docsystem.Requirement {
	req.UploadedNodeID = cloneString(req.UploadedNodeID)
	req.RefreshStatus()
	return req
}
