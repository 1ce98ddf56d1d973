package docsystem

import (
	"sort"
	"time"
)

// NodeKind distinguishes folders from files. Immutable once a node is created.
type NodeKind string

const (
	NodeKindFolder NodeKind = "folder"
	NodeKindFile   NodeKind = "file"
)

// Valid reports whether k is a known kind
func (k NodeKind) Valid() bool {
	return k == NodeKindFolder || k == NodeKindFile
}

// Node is a file or folder entry in a deal's document tree.
// StoragePath, ByteSize and MediaType are set iff Kind is NodeKindFile.
type Node struct {
	ID          string    `json:"id" db:"id"`
	DealID      string    `json:"deal_id" db:"deal_id"`
	ParentID    *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name        string    `json:"name" db:"name"`
	Kind        NodeKind  `json:"kind" db:"kind"`
	StoragePath *string   `json:"storage_path,omitempty" db:"storage_path"`
	ByteSize    *int64    `json:"byte_size,omitempty" db:"byte_size"`
	MediaType   *string   `json:"media_type,omitempty" db:"media_type"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (n *Node) IsFolder() bool { return n.Kind == NodeKindFolder }

func (n *Node) IsFile() bool { return n.Kind == NodeKindFile }

// SortNodes orders a sibling listing: folders before files, then most
// recently updated first, with the id as a final tie-break.
func SortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}
