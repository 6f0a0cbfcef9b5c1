package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// SnapshotStore persists cart snapshots per session. Load returns nil bytes
// when no snapshot exists.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, sessionID string) ([]byte, error)
	SaveSnapshot(ctx context.Context, sessionID string, data []byte) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Summary is returned from every mutator so consumers never recompute
// derived totals independently.
type Summary struct {
	Items  []models.LineItem `json:"items"`
	Total  int64             `json:"total"`
	Count  int               `json:"count"`
	IsOpen bool              `json:"is_open"`
}

// Service owns all session carts. Mutations are applied serially under one
// lock and the snapshot is persisted before the mutator returns, so the
// persisted state never lags more than one mutation behind memory.
type Service struct {
	mu        sync.Mutex
	carts     map[string]*Cart
	snapshots SnapshotStore
	logger    *zap.Logger
}

// NewService creates a cart service backed by the given snapshot store.
func NewService(snapshots SnapshotStore) *Service {
	return &Service{
		carts:     make(map[string]*Cart),
		snapshots: snapshots,
		logger:    util.GetLogger(),
	}
}

// cartFor returns the session's cart, rehydrating it from the snapshot store
// on first access. Corrupt snapshots are discarded, never fatal. Caller must
// hold s.mu.
func (s *Service) cartFor(ctx context.Context, sessionID string) *Cart {
	if c, ok := s.carts[sessionID]; ok {
		return c
	}

	c := New()
	data, err := s.snapshots.LoadSnapshot(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Failed to load cart snapshot",
			zap.String("session_id", sessionID),
			zap.Error(err))
	} else if data != nil {
		items, err := DecodeSnapshot(data)
		if err != nil {
			util.CartRehydrationsDiscarded.Inc()
			s.logger.Warn("Discarding corrupt cart snapshot",
				zap.String("session_id", sessionID),
				zap.Error(err))
		} else {
			c = Restore(items)
		}
	}

	s.carts[sessionID] = c
	return c
}

// persist writes the cart snapshot for the session. Caller must hold s.mu.
func (s *Service) persist(ctx context.Context, sessionID string, c *Cart) error {
	data, err := EncodeSnapshot(c.Items())
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	if err := s.snapshots.SaveSnapshot(ctx, sessionID, data); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

func (s *Service) summary(c *Cart) *Summary {
	return &Summary{
		Items:  c.Items(),
		Total:  c.Total(),
		Count:  c.Count(),
		IsOpen: c.IsOpen(),
	}
}

// Get returns the current cart summary without mutating anything.
func (s *Service) Get(ctx context.Context, sessionID string) *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary(s.cartFor(ctx, sessionID))
}

// AddTicket adds a ticket line item to the session cart.
func (s *Service) AddTicket(ctx context.Context, sessionID string, item models.LineItem) (*Summary, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddTicket")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.AddTicket(item)
	util.CartMutationsTotal.WithLabelValues("add_ticket").Inc()
	if err := s.persist(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.summary(c), nil
}

// AddMerchandise adds a merchandise line item to the session cart.
func (s *Service) AddMerchandise(ctx context.Context, sessionID string, item models.LineItem) (*Summary, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddMerchandise")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.AddMerchandise(item)
	util.CartMutationsTotal.WithLabelValues("add_merchandise").Inc()
	if err := s.persist(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.summary(c), nil
}

// Remove deletes a line item by id. Unknown ids are a no-op, not an error.
func (s *Service) Remove(ctx context.Context, sessionID, itemID string) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.Remove(itemID)
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	if err := s.persist(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.summary(c), nil
}

// UpdateQuantity sets a line item's quantity; zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.UpdateQuantity(itemID, quantity)
	util.CartMutationsTotal.WithLabelValues("update_quantity").Inc()
	if err := s.persist(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.summary(c), nil
}

// Clear empties the session cart and drops its persisted snapshot.
func (s *Service) Clear(ctx context.Context, sessionID string) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.Clear()
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	if err := s.snapshots.DeleteSnapshot(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return s.summary(c), nil
}

// ClearKind removes all items of one kind, used after a completed checkout to
// clear only the items that checkout covered.
func (s *Service) ClearKind(ctx context.Context, sessionID, kind string) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.ClearKind(kind)
	util.CartMutationsTotal.WithLabelValues("clear_kind").Inc()
	if err := s.persist(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.summary(c), nil
}

// SetOpen sets the sidebar visibility flag. The flag is session state only
// and is not persisted.
func (s *Service) SetOpen(ctx context.Context, sessionID string, open bool) *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	if open {
		c.Open()
	} else {
		c.Close()
	}
	return s.summary(c)
}

// Toggle flips the sidebar visibility flag.
func (s *Service) Toggle(ctx context.Context, sessionID string) *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(ctx, sessionID)
	c.Toggle()
	return s.summary(c)
}

// ItemsOfKind returns the session's line items of one kind, e.g. the
// merchandise items for a merchandise-only checkout.
func (s *Service) ItemsOfKind(ctx context.Context, sessionID, kind string) []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartFor(ctx, sessionID).ItemsOfKind(kind)
}
