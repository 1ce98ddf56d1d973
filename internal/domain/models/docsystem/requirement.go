package docsystem

import "time"

// RequirementStatus is derived from IsRequired and UploadedNodeID, never stored
type RequirementStatus string

const (
	RequirementMissing     RequirementStatus = "missing"
	RequirementUploaded    RequirementStatus = "uploaded"
	RequirementRecommended RequirementStatus = "recommended"
)

// Requirement is a checklist entry describing an expected document for a deal
type Requirement struct {
	ID             string            `json:"id" db:"id"`
	DealID         string            `json:"deal_id" db:"deal_id"`
	Name           string            `json:"name" db:"name"`
	Category       string            `json:"category" db:"category"`
	Description    string            `json:"description" db:"description"`
	IsRequired     bool              `json:"is_required" db:"is_required"`
	Status         RequirementStatus `json:"status"`
	UploadedNodeID *string           `json:"uploaded_node_id" db:"uploaded_node_id"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// DeriveStatus computes the fulfillment status of a requirement
func DeriveStatus(isRequired bool, uploadedNodeID *string) RequirementStatus {
	if uploadedNodeID != nil {
		return RequirementUploaded
	}
	if isRequired {
		return RequirementMissing
	}
	return RequirementRecommended
}

// RefreshStatus recomputes Status from the persisted fields
func (r *Requirement) RefreshStatus() {
	r.Status = DeriveStatus(r.IsRequired, r.UploadedNodeID)
}

// RequirementSummary counts a deal's requirements by status
type RequirementSummary struct {
	DealID      string `json:"deal_id"`
	Total       int    `json:"total"`
	Uploaded    int    `json:"uploaded"`
	Missing     int    `json:"missing"`
	Recommended int    `json:"recommended"`
}
