package cart

import (
	"context"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketItem(eventID string, ticketTypeID int64, price int64, qty int) models.LineItem {
	return models.LineItem{
		Kind:         models.KindTicket,
		Name:         "Live at the Amphitheatre",
		UnitPrice:    price,
		Quantity:     qty,
		EventID:      eventID,
		EventName:    "Live at the Amphitheatre",
		TicketTypeID: ticketTypeID,
	}
}

func merchItem(catalogID int64, variant string, price int64, qty int) models.LineItem {
	return models.LineItem{
		Kind:          models.KindMerchandise,
		Name:          "Tour T-Shirt",
		UnitPrice:     price,
		Quantity:      qty,
		CatalogItemID: catalogID,
		VariantLabel:  variant,
	}
}

func TestAddTicketMergesSameLine(t *testing.T) {
	c := New()

	c.AddTicket(ticketItem("ev-1", 1, 3500, 2))
	c.AddTicket(ticketItem("ev-1", 1, 3500, 3))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, c.Count())
	assert.Equal(t, int64(17500), c.Total())
}

func TestAddTicketDifferentTierStaysSeparate(t *testing.T) {
	c := New()

	c.AddTicket(ticketItem("ev-1", 1, 3500, 1))
	c.AddTicket(ticketItem("ev-1", 2, 7000, 1))

	assert.Len(t, c.Items(), 2)
	assert.Equal(t, int64(10500), c.Total())
}

func TestAddMerchandiseVariantsStaySeparate(t *testing.T) {
	c := New()

	c.AddMerchandise(merchItem(7, "S", 1500, 1))
	c.AddMerchandise(merchItem(7, "M", 1500, 1))
	c.AddMerchandise(merchItem(7, "M", 1500, 2))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 3, items[1].Quantity)
}

func TestAddOpensCart(t *testing.T) {
	c := New()
	assert.False(t, c.IsOpen())

	c.AddMerchandise(merchItem(7, "S", 1500, 1))
	assert.True(t, c.IsOpen())

	c.Toggle()
	assert.False(t, c.IsOpen())
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	c := New()
	c.AddTicket(ticketItem("ev-1", 1, 3500, 2))

	c.Remove("no-such-id")
	assert.Len(t, c.Items(), 1)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	c := New()
	c.AddTicket(ticketItem("ev-1", 1, 3500, 2))
	id := c.Items()[0].ID

	c.UpdateQuantity(id, 4)
	assert.Equal(t, 4, c.Items()[0].Quantity)

	c.UpdateQuantity(id, 0)
	assert.Empty(t, c.Items())
}

func TestClearKindLeavesOtherKind(t *testing.T) {
	c := New()
	c.AddTicket(ticketItem("ev-1", 1, 3500, 2))
	c.AddMerchandise(merchItem(7, "S", 1500, 1))

	c.ClearKind(models.KindTicket)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.KindMerchandise, items[0].Kind)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := New()
	c.AddTicket(ticketItem("ev-1", 1, 3500, 2))
	c.AddMerchandise(merchItem(7, "M", 1500, 1))

	data, err := EncodeSnapshot(c.Items())
	require.NoError(t, err)

	items, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, c.Items(), items)
}

func TestDecodeSnapshotRejectsCorruptAndUnknownVersion(t *testing.T) {
	_, err := DecodeSnapshot([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeSnapshot([]byte(`{"version":99,"items":[]}`))
	assert.Error(t, err)
}

// memorySnapshots is an in-memory SnapshotStore for service tests.
type memorySnapshots struct {
	data map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) LoadSnapshot(_ context.Context, sessionID string) ([]byte, error) {
	return m.data[sessionID], nil
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, sessionID string, data []byte) error {
	m.data[sessionID] = data
	return nil
}

func (m *memorySnapshots) DeleteSnapshot(_ context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func TestServicePersistsAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	svc := NewService(snapshots)

	summary, err := svc.AddMerchandise(ctx, "session-1", merchItem(7, "S", 1500, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, int64(3000), summary.Total)
	assert.True(t, summary.IsOpen)

	// A fresh service rehydrates from the persisted snapshot
	svc2 := NewService(snapshots)
	restored := svc2.Get(ctx, "session-1")
	require.Len(t, restored.Items, 1)
	assert.Equal(t, 2, restored.Items[0].Quantity)
	// The visibility flag is session state only, never persisted
	assert.False(t, restored.IsOpen)
}

func TestServiceDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	snapshots.data["session-1"] = []byte("{broken")

	svc := NewService(snapshots)
	summary := svc.Get(ctx, "session-1")
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.Total)
}

func TestServiceItemsOfKind(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemorySnapshots())

	_, err := svc.AddTicket(ctx, "session-1", ticketItem("ev-1", 1, 3500, 1))
	require.NoError(t, err)
	_, err = svc.AddMerchandise(ctx, "session-1", merchItem(7, "S", 1500, 1))
	require.NoError(t, err)

	merch := svc.ItemsOfKind(ctx, "session-1", models.KindMerchandise)
	require.Len(t, merch, 1)
	assert.Equal(t, int64(7), merch[0].CatalogItemID)
}
