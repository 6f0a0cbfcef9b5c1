// Package catalog defines the read-only query surface over events and
// merchandise that listings and checkout flows consume. All operations are
// side-effect-free; lookups signal "not found" with a nil result, never an
// error, and searches over unknown queries return empty sets.
package catalog

import (
	"context"

	"storefront-service/internal/models"
)

// Catalog is the event and merchandise query surface.
type Catalog interface {
	// ListEvents returns all published events.
	ListEvents(ctx context.Context) ([]models.Event, error)
	// FeaturedEvents returns up to limit published featured events.
	FeaturedEvents(ctx context.Context, limit int) ([]models.Event, error)
	// UpcomingEvents returns up to limit published events.
	UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error)
	// GetEvent looks up one published event by id or slug. Returns
	// (nil, nil) when absent.
	GetEvent(ctx context.Context, idOrSlug string) (*models.Event, error)
	// EventTicketTypes returns the ticket tiers for an event; empty when
	// the event is unknown.
	EventTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error)
	// SearchEvents matches the query against title, description, venue
	// name, city, category and tags, case-insensitively.
	SearchEvents(ctx context.Context, query string) ([]models.Event, error)
	// EventsByCategory filters published events by category.
	EventsByCategory(ctx context.Context, category string) ([]models.Event, error)
	// EventsByTag filters published events by tag.
	EventsByTag(ctx context.Context, tag string) ([]models.Event, error)
	// EventsByVenue filters published events by venue.
	EventsByVenue(ctx context.Context, venueID string) ([]models.Event, error)
	// Categories lists the distinct categories of published events.
	Categories(ctx context.Context) ([]string, error)
	// Tags lists the distinct tags of published events.
	Tags(ctx context.Context) ([]string, error)

	// ListMerchandise returns all in-stock catalog products.
	ListMerchandise(ctx context.Context) ([]models.MerchandiseItem, error)
	// MerchandiseByCategory filters catalog products by category.
	MerchandiseByCategory(ctx context.Context, category string) ([]models.MerchandiseItem, error)
	// GetMerchandiseItem looks up one product. Returns (nil, nil) when
	// absent.
	GetMerchandiseItem(ctx context.Context, id int64) (*models.MerchandiseItem, error)
}
