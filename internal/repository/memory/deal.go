package memory

import (
	"context"
	"fmt"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/domain/repositories"

	"github.com/google/uuid"
)

// DealRepository implements repositories.DealRepository on a Store
type DealRepository struct {
	store *Store
}

// NewDealRepository creates a new deal repository
func NewDealRepository(store *Store) repositories.DealRepository {
	return &DealRepository{store: store}
}

func (r *DealRepository) Create(ctx context.Context, deal *models.Deal) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if deal.ID == "" {
		deal.ID = uuid.NewString()
	}
	if _, exists := r.store.deals[deal.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("deal %s already exists", deal.ID),
			ResourceType: "deal",
			ResourceID:   deal.ID,
		}
	}
	stored := *deal
	stored.ClientID = cloneString(deal.ClientID)
	r.store.deals[deal.ID] = stored
	return nil
}

func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	deal, ok := r.store.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, domain.ErrNotFound)
	}
	deal.ClientID = cloneString(deal.ClientID)
	return &deal, nil
}

func (r *DealRepository) GrantInvestor(ctx context.Context, dealID, investorID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.deals[dealID]; !ok {
		return fmt.Errorf("deal %s: %w", dealID, domain.ErrNotFound)
	}
	set, ok := r.store.investors[dealID]
	if !ok {
		set = make(map[string]struct{})
		r.store.investors[dealID] = set
	}
	set[investorID] = struct{}{}
	return nil
}

func (r *DealRepository) HasInvestor(ctx context.Context, dealID, investorID string) (bool, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	_, ok := r.store.investors[dealID][investorID]
	return ok, nil
}
