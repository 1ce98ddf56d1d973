package models

import "time"

// DealStatus tracks a deal through its lifecycle
type DealStatus string

const (
	DealStatusPitch     DealStatus = "pitch"
	DealStatusDiligence DealStatus = "diligence"
	DealStatusMarketing DealStatus = "marketing"
	DealStatusClosed    DealStatus = "closed"
)

// Deal is a banking engagement owned by one bank, optionally linked to one client
type Deal struct {
	ID        string     `json:"id" db:"id"`
	BankID    string     `json:"bank_id" db:"bank_id"`
	ClientID  *string    `json:"client_id" db:"client_id"`
	Name      string     `json:"name" db:"name"`
	Status    DealStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
