package cart

import (
	"encoding/json"
	"fmt"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

// Cart holds the ordered line items and the sidebar visibility flag for one
// browsing session. It is not safe for concurrent use; Service serializes
// access.
type Cart struct {
	items  []models.LineItem
	isOpen bool
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Restore creates a cart pre-populated from a rehydrated snapshot.
func Restore(items []models.LineItem) *Cart {
	c := &Cart{items: make([]models.LineItem, len(items))}
	copy(c.items, items)
	return c
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []models.LineItem {
	out := make([]models.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// ItemsOfKind returns a copy of the line items with the given kind.
func (c *Cart) ItemsOfKind(kind string) []models.LineItem {
	var out []models.LineItem
	for _, li := range c.items {
		if li.Kind == kind {
			out = append(out, li)
		}
	}
	return out
}

// AddTicket adds a ticket line item, merging into an existing line with the
// same (event, ticket type). Opens the cart.
func (c *Cart) AddTicket(item models.LineItem) {
	item.Kind = models.KindTicket
	c.add(item)
}

// AddMerchandise adds a merchandise line item, merging into an existing line
// with the same (catalog item, variant). Opens the cart.
func (c *Cart) AddMerchandise(item models.LineItem) {
	item.Kind = models.KindMerchandise
	c.add(item)
}

func (c *Cart) add(item models.LineItem) {
	for i := range c.items {
		if c.items[i].SameLine(&item) {
			c.items[i].Quantity += item.Quantity
			c.isOpen = true
			return
		}
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	c.items = append(c.items, item)
	c.isOpen = true
}

// Remove deletes the line item with the given id. Removing an unknown id is a
// no-op.
func (c *Cart) Remove(id string) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity of the line item with the given id.
// A quantity of zero or less removes the item. Unknown ids are a no-op.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// ClearKind removes all line items of the given kind, leaving the rest.
func (c *Cart) ClearKind(kind string) {
	kept := c.items[:0]
	for _, li := range c.items {
		if li.Kind != kind {
			kept = append(kept, li)
		}
	}
	c.items = kept
}

// Open, Close and Toggle mutate the sidebar visibility flag only.
func (c *Cart) Open()   { c.isOpen = true }
func (c *Cart) Close()  { c.isOpen = false }
func (c *Cart) Toggle() { c.isOpen = !c.isOpen }

// IsOpen reports the sidebar visibility flag.
func (c *Cart) IsOpen() bool { return c.isOpen }

// Total returns the sum of unit price times quantity over all items.
func (c *Cart) Total() int64 {
	var total int64
	for _, li := range c.items {
		total += li.UnitPrice * int64(li.Quantity)
	}
	return total
}

// Count returns the sum of quantities over all items.
func (c *Cart) Count() int {
	var count int
	for _, li := range c.items {
		count += li.Quantity
	}
	return count
}

// snapshotVersion guards the persisted format so it can evolve safely.
const snapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	Items   []models.LineItem `json:"items"`
}

// EncodeSnapshot serializes the item list for persistence.
func EncodeSnapshot(items []models.LineItem) ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotVersion, Items: items})
}

// DecodeSnapshot deserializes a persisted snapshot. Corrupt payloads and
// unknown versions return an error; callers fall back to an empty cart.
func DecodeSnapshot(data []byte) ([]models.LineItem, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported cart snapshot version: %d", snap.Version)
	}
	return snap.Items, nil
}
