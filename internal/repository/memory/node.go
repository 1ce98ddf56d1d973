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

// NodeRepository implements docsysRepo.NodeRepository on a Store
type NodeRepository struct {
	store *Store
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(store *Store) docsysRepo.NodeRepository {
	return &NodeRepository{store: store}
}

// Create inserts a node, assigning an ID if empty
func (r *NodeRepository) Create(ctx context.Context, node *docsystem.Node) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if _, exists := r.store.nodes[node.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("node %s already exists", node.ID),
			ResourceType: "node",
			ResourceID:   node.ID,
		}
	}
	if node.ParentID != nil {
		if _, ok := r.store.nodes[*node.ParentID]; !ok {
			return fmt.Errorf("parent %s: %w", *node.ParentID, domain.ErrNotFound)
		}
	}

	r.store.nodes[node.ID] = cloneNode(*node)
	return nil
}

// GetByID retrieves a node by ID
func (r *NodeRepository) GetByID(ctx context.Context, id string) (*docsystem.Node, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	node, ok := r.store.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	out := cloneNode(node)
	return &out, nil
}

// GetForUpdate is GetByID; the store lock held by ExecTx already excludes other writers
func (r *NodeRepository) GetForUpdate(ctx context.Context, id string) (*docsystem.Node, error) {
	return r.GetByID(ctx, id)
}

// Update persists mutable node fields
func (r *NodeRepository) Update(ctx context.Context, node *docsystem.Node) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	existing, ok := r.store.nodes[node.ID]
	if !ok {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}

	updated := cloneNode(*node)
	// deal, kind, creator and creation time are immutable
	updated.DealID = existing.DealID
	updated.Kind = existing.Kind
	updated.UploadedBy = existing.UploadedBy
	updated.CreatedAt = existing.CreatedAt
	r.store.nodes[node.ID] = updated
	return nil
}

// Delete removes a single node. Fails like a RESTRICT foreign key when
// the node still has children.
func (r *NodeRepository) Delete(ctx context.Context, id string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.nodes[id]; !ok {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	if n := r.countChildren(id); n > 0 {
		return &domain.NotEmptyError{
			Message:    fmt.Sprintf("folder %s is not empty", id),
			NodeID:     id,
			ChildCount: n,
		}
	}

	delete(r.store.nodes, id)

	// Mirrors ON DELETE SET NULL on requirements.uploaded_node_id
	for reqID, req := range r.store.requirements {
		if req.UploadedNodeID != nil && *req.UploadedNodeID == id {
			req.UploadedNodeID = nil
			r.store.requirements[reqID] = req
		}
	}
	return nil
}

// ListChildren lists direct children, folders first, then updated_at descending
func (r *NodeRepository) ListChildren(ctx context.Context, dealID string, parentID *string) ([]docsystem.Node, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	children := make([]docsystem.Node, 0)
	for _, node := range r.store.nodes {
		if node.DealID != dealID || !sameParent(node.ParentID, parentID) {
			continue
		}
		children = append(children, cloneNode(node))
	}

	docsystem.SortNodes(children)
	return children, nil
}

// CountChildren counts direct children of a node
func (r *NodeRepository) CountChildren(ctx context.Context, id string) (int, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.countChildren(id), nil
}

func (r *NodeRepository) countChildren(id string) int {
	count := 0
	for _, node := range r.store.nodes {
		if node.ParentID != nil && *node.ParentID == id {
			count++
		}
	}
	return count
}

// ListByDeal retrieves every node of a deal ordered by creation time
func (r *NodeRepository) ListByDeal(ctx context.Context, dealID string) ([]docsystem.Node, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	nodes := make([]docsystem.Node, 0)
	for _, node := range r.store.nodes {
		if node.DealID == dealID {
			nodes = append(nodes, cloneNode(node))
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes, nil
}

// LockDeal is a no-op: transactions already hold the store-wide lock
func (r *NodeRepository) LockDeal(ctx context.Context, dealID string) error {
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneNode(n docsystem.Node) docsystem.Node {
	n.ParentID = cloneString(n.ParentID)
	n.StoragePath = cloneString(n.StoragePath)
	n.MediaType = cloneString(n.MediaType)
	if n.ByteSize != nil {
		size := *n.ByteSize
		n.ByteSize = &size
	}
	return n
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
