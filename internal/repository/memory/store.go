// Package memory holds in-process implementations of the repository
// interfaces. They back the test suites and the database-less dev mode.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"

	"github.com/google/uuid"
)

// Store is the shared state behind every in-memory repository
type Store struct {
	mu sync.RWMutex

	users       map[string]models.User
	objects     map[string]models.Object
	assignments map[assignmentKey]models.Assignment
	folders     map[string]models.Folder
	media       map[models.MediaKind]map[string]models.MediaFile
	bimModels   map[string]models.BimModel
	comments    map[string]models.Comment
	items       map[string]models.DownloadableItem
	purchases   map[purchaseKey]models.Purchase
	portfolio   map[string]models.PortfolioItem

	failure error
	now     func() time.Time
}

type assignmentKey struct{ userID, objectID string }

type purchaseKey struct{ userID, itemID string }

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:       make(map[string]models.User),
		objects:     make(map[string]models.Object),
		assignments: make(map[assignmentKey]models.Assignment),
		folders:     make(map[string]models.Folder),
		media: map[models.MediaKind]map[string]models.MediaFile{
			models.MediaKindPhoto: {},
			models.MediaKindVideo: {},
		},
		bimModels: make(map[string]models.BimModel),
		comments:  make(map[string]models.Comment),
		items:     make(map[string]models.DownloadableItem),
		purchases: make(map[purchaseKey]models.Purchase),
		portfolio: make(map[string]models.PortfolioItem),
		now:       time.Now,
	}
}

// FailWith makes every subsequent call fail with err wrapped in
// domain.ErrStoreUnavailable. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// check must be called with s.mu held
func (s *Store) check(op string) error {
	if s.failure != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, s.failure)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

// TxManager implements repositories.TransactionManager. Writes made before
// fn fails are not rolled back.
type TxManager struct{}

// TxManager returns the transaction manager of the store
func (s *Store) TxManager() repositories.TransactionManager { return TxManager{} }

// ExecTx implements repositories.TransactionManager
func (TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
