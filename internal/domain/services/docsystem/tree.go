package docsystem

import (
	"context"

	"dealdesk/internal/domain/models/docsystem"
)

// TreeService persists nodes and serves children-of queries
type TreeService interface {
	// ListChildren lists direct children of parentID (nil = top level),
	// folders first, then most recently updated first
	ListChildren(ctx context.Context, dealID string, parentID *string) ([]docsystem.Node, error)

	// GetNode retrieves a single node
	GetNode(ctx context.Context, nodeID string) (*docsystem.Node, error)

	// GetTree builds the nested folder/file tree for a deal
	GetTree(ctx context.Context, dealID string) (*docsystem.TreeNode, error)

	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.Node, error)

	// CreateFile creates a file node; when RequirementID is set the
	// requirement is linked to the new node in the same transaction
	CreateFile(ctx context.Context, req *CreateFileRequest) (*docsystem.Node, error)

	Rename(ctx context.Context, nodeID, newName string) (*docsystem.Node, error)

	// Move re-parents a node (nil = top level), rejecting cycles with domain.ErrCycle
	Move(ctx context.Context, nodeID string, newParentID *string) (*docsystem.Node, error)

	// Update applies a rename and/or a move in one transaction; a rejected
	// move leaves the name unchanged
	Update(ctx context.Context, nodeID string, req *UpdateNodeRequest) (*docsystem.Node, error)

	// ReplaceContent swaps the stored bytes reference of a file node
	ReplaceContent(ctx context.Context, nodeID string, req *ReplaceContentRequest) (*docsystem.Node, error)

	// Delete removes a node. A non-empty folder requires cascade.
	// Requirements pointing at deleted files are unlinked in the same transaction.
	Delete(ctx context.Context, nodeID string, cascade bool) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	DealID    string  `json:"-"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"` // NULL = top level
	CreatedBy string  `json:"-"`
}

// CreateFileRequest represents a file creation request. The bytes are
// already stored at StoragePath by the upload transport.
type CreateFileRequest struct {
	DealID        string  `json:"-"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parent_id,omitempty"`
	StoragePath   string  `json:"storage_path"`
	ByteSize      int64   `json:"byte_size"`
	MediaType     string  `json:"media_type"`
	RequirementID *string `json:"requirement_id,omitempty"`
	CreatedBy     string  `json:"-"`
}

// UpdateNodeRequest renames and/or moves a node. ParentID is only applied
// when Move is set; a nil ParentID then means the top level.
type UpdateNodeRequest struct {
	Name     *string
	Move     bool
	ParentID *string
}

// ReplaceContentRequest points a file node at new bytes
type ReplaceContentRequest struct {
	StoragePath string `json:"storage_path"`
	ByteSize    int64  `json:"byte_size"`
	MediaType   string `json:"media_type"`
}
