package memory

import (
	"context"
	"sort"

	"buildportal/internal/domain/models"
)

// ItemRepository is the in-memory repositories.ItemRepository
type ItemRepository struct{ store *Store }

// Items returns the catalog item repository of the store
func (s *Store) Items() *ItemRepository { return &ItemRepository{store: s} }

func (r *ItemRepository) Create(ctx context.Context, item *models.DownloadableItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create item"); err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = newID()
	}
	now := r.store.now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.store.items[item.ID] = *item
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.DownloadableItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get item"); err != nil {
		return nil, err
	}

	i, ok := r.store.items[id]
	if !ok {
		return nil, notFound("item", id)
	}
	return &i, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]models.DownloadableItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("list items"); err != nil {
		return nil, err
	}

	items := []models.DownloadableItem{}
	for _, i := range r.store.items {
		items = append(items, i)
	}
	sort.Slice(items, func(a, b int) bool { return items[a].CreatedAt.After(items[b].CreatedAt) })
	return items, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *models.DownloadableItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("update item"); err != nil {
		return err
	}

	existing, ok := r.store.items[item.ID]
	if !ok {
		return notFound("item", item.ID)
	}
	item.DownloadCount = existing.DownloadCount
	item.UpdatedAt = r.store.now()
	r.store.items[item.ID] = *item
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("delete item"); err != nil {
		return err
	}

	if _, ok := r.store.items[id]; !ok {
		return notFound("item", id)
	}
	delete(r.store.items, id)
	for k := range r.store.purchases {
		if k.itemID == id {
			delete(r.store.purchases, k)
		}
	}
	return nil
}

func (r *ItemRepository) IncrementDownloads(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("increment downloads"); err != nil {
		return err
	}

	i, ok := r.store.items[id]
	if !ok {
		return notFound("item", id)
	}
	i.DownloadCount++
	r.store.items[id] = i
	return nil
}

// PurchaseRepository is the in-memory repositories.PurchaseRepository
type PurchaseRepository struct{ store *Store }

// Purchases returns the purchase repository of the store
func (s *Store) Purchases() *PurchaseRepository { return &PurchaseRepository{store: s} }

func (r *PurchaseRepository) Get(ctx context.Context, userID, itemID string) (*models.Purchase, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get purchase"); err != nil {
		return nil, err
	}

	p, ok := r.store.purchases[purchaseKey{userID, itemID}]
	if !ok {
		return nil, notFound("purchase", userID+"/"+itemID)
	}
	return &p, nil
}

func (r *PurchaseRepository) Upsert(ctx context.Context, purchase *models.Purchase) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("upsert purchase"); err != nil {
		return err
	}

	key := purchaseKey{purchase.UserID, purchase.ItemID}
	now := r.store.now()
	if existing, ok := r.store.purchases[key]; ok {
		purchase.ID = existing.ID
		purchase.CreatedAt = existing.CreatedAt
		if purchase.ExternalOrderID == nil {
			purchase.ExternalOrderID = existing.ExternalOrderID
		}
		if existing.Status == models.PurchaseStatusPaid && purchase.Status == models.PurchaseStatusPending {
			purchase.Status = existing.Status
		}
	} else {
		purchase.ID = newID()
		purchase.CreatedAt = now
	}
	purchase.UpdatedAt = now
	r.store.purchases[key] = *purchase
	return nil
}

// PortfolioRepository is the in-memory repositories.PortfolioRepository
type PortfolioRepository struct{ store *Store }

// Portfolio returns the portfolio repository of the store
func (s *Store) Portfolio() *PortfolioRepository { return &PortfolioRepository{store: s} }

func (r *PortfolioRepository) Create(ctx context.Context, item *models.PortfolioItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create portfolio item"); err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = newID()
	}
	item.CreatedAt = r.store.now()
	r.store.portfolio[item.ID] = *item
	return nil
}

func (r *PortfolioRepository) GetByID(ctx context.Context, id string) (*models.PortfolioItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get portfolio item"); err != nil {
		return nil, err
	}

	p, ok := r.store.portfolio[id]
	if !ok {
		return nil, notFound("portfolio item", id)
	}
	return &p, nil
}

func (r *PortfolioRepository) List(ctx context.Context) ([]models.PortfolioItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("list portfolio"); err != nil {
		return nil, err
	}

	list := []models.PortfolioItem{}
	for _, p := range r.store.portfolio {
		list = append(list, p)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].CreatedAt.After(list[b].CreatedAt) })
	return list, nil
}

func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("delete portfolio item"); err != nil {
		return err
	}

	if _, ok := r.store.portfolio[id]; !ok {
		return notFound("portfolio item", id)
	}
	delete(r.store.portfolio, id)
	return nil
}
