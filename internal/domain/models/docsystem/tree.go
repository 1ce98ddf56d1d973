package docsystem

import "time"

// TreeNode represents the root of a deal's document tree
type TreeNode struct {
	DealID  string            `json:"deal_id"`
	Folders []*FolderTreeNode `json:"folders"`
	Files   []FileTreeNode    `json:"files"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	UpdatedAt time.Time         `json:"updated_at"`
	Folders   []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
	Files     []FileTreeNode    `json:"files"`
}

// FileTreeNode represents a file in the tree (metadata only)
type FileTreeNode struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	ByteSize  int64     `json:"byte_size"`
	MediaType string    `json:"media_type"`
	UpdatedAt time.Time `json:"updated_at"`
}
