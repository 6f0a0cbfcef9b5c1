package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store is the Postgres-backed catalog and purchase store.
type Store struct {
	db *sqlx.DB
}

var _ catalog.Catalog = (*Store)(nil)

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

func observe(query string, start time.Time) {
	util.CatalogQueryLatency.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

type eventRow struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	Slug            string         `db:"slug"`
	Date            string         `db:"date"`
	Time            string         `db:"time"`
	EndTime         string         `db:"end_time"`
	Description     string         `db:"description"`
	LongDescription string         `db:"long_description"`
	IsSoldOut       bool           `db:"is_sold_out"`
	IsFeatured      bool           `db:"is_featured"`
	IsPublished     bool           `db:"is_published"`
	Category        string         `db:"category"`
	Tags            pq.StringArray `db:"tags"`
	VenueID         string         `db:"venue_id"`
	VenueName       string         `db:"venue_name"`
	VenueAddress    string         `db:"venue_address"`
	VenueCity       string         `db:"venue_city"`
	VenueCountry    string         `db:"venue_country"`
	VenueCapacity   int            `db:"venue_capacity"`
	VenueMapURL     string         `db:"venue_map_url"`
}

func (r *eventRow) toEvent() models.Event {
	return models.Event{
		ID:              r.ID,
		Title:           r.Title,
		Slug:            r.Slug,
		Date:            r.Date,
		Time:            r.Time,
		EndTime:         r.EndTime,
		Description:     r.Description,
		LongDescription: r.LongDescription,
		IsSoldOut:       r.IsSoldOut,
		IsFeatured:      r.IsFeatured,
		IsPublished:     r.IsPublished,
		Category:        r.Category,
		Tags:            []string(r.Tags),
		Venue: models.Venue{
			ID:       r.VenueID,
			Name:     r.VenueName,
			Address:  r.VenueAddress,
			City:     r.VenueCity,
			Country:  r.VenueCountry,
			Capacity: r.VenueCapacity,
			MapURL:   r.VenueMapURL,
		},
	}
}

const eventSelect = `
	SELECT e.id, e.title, e.slug, e.date, e.time, e.end_time,
	       e.description, e.long_description, e.is_sold_out, e.is_featured,
	       e.is_published, e.category, e.tags,
	       v.id AS venue_id, v.name AS venue_name, v.address AS venue_address,
	       v.city AS venue_city, v.country AS venue_country,
	       v.capacity AS venue_capacity, v.map_url AS venue_map_url
	FROM events e
	JOIN venues v ON v.id = e.venue_id`

func (s *Store) selectEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toEvent())
	}

	if err := s.attachRelated(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachRelated loads ticket types and performers for a batch of events.
func (s *Store) attachRelated(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, len(events))
	byID := make(map[string]*models.Event, len(events))
	for i := range events {
		ids[i] = events[i].ID
		byID[events[i].ID] = &events[i]
	}

	query, args, err := sqlx.In(
		"SELECT id, event_id, name, price, description, available FROM ticket_types WHERE event_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var ticketTypes []models.TicketType
	if err := s.db.SelectContext(ctx, &ticketTypes, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load ticket types: %w", err)
	}
	for _, tt := range ticketTypes {
		ev := byID[tt.EventID]
		ev.TicketTypes = append(ev.TicketTypes, tt)
	}

	type performerRow struct {
		EventID  string `db:"event_id"`
		ID       string `db:"id"`
		Name     string `db:"name"`
		Role     string `db:"role"`
		ImageURL string `db:"image_url"`
	}
	query, args, err = sqlx.In(`
		SELECT ep.event_id, p.id, p.name, p.role, p.image_url
		FROM performers p
		JOIN event_performers ep ON ep.performer_id = p.id
		WHERE ep.event_id IN (?)
		ORDER BY ep.position`, ids)
	if err != nil {
		return err
	}
	var performers []performerRow
	if err := s.db.SelectContext(ctx, &performers, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load performers: %w", err)
	}
	for _, pr := range performers {
		ev := byID[pr.EventID]
		ev.Performers = append(ev.Performers, models.Performer{
			ID:       pr.ID,
			Name:     pr.Name,
			Role:     pr.Role,
			ImageURL: pr.ImageURL,
		})
	}

	return nil
}

// ListEvents returns all published events.
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	defer observe("list_events", time.Now())
	return s.selectEvents(ctx, eventSelect+" WHERE e.is_published ORDER BY e.id")
}

// FeaturedEvents returns up to limit published featured events.
func (s *Store) FeaturedEvents(ctx context.Context, limit int) ([]models.Event, error) {
	defer observe("featured_events", time.Now())
	return s.selectEvents(ctx,
		eventSelect+" WHERE e.is_published AND e.is_featured ORDER BY e.id LIMIT $1", limit)
}

// UpcomingEvents returns up to limit published events.
func (s *Store) UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error) {
	defer observe("upcoming_events", time.Now())
	return s.selectEvents(ctx,
		eventSelect+" WHERE e.is_published ORDER BY e.id LIMIT $1", limit)
}

// GetEvent retrieves one published event by id or slug. Absent events are
// (nil, nil), not an error.
func (s *Store) GetEvent(ctx context.Context, idOrSlug string) (*models.Event, error) {
	defer observe("get_event", time.Now())
	events, err := s.selectEvents(ctx,
		eventSelect+" WHERE e.is_published AND (e.id = $1 OR e.slug = $1)", idOrSlug)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// EventTicketTypes returns the ticket tiers for an event.
func (s *Store) EventTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	defer observe("event_ticket_types", time.Now())
	var ticketTypes []models.TicketType
	err := s.db.SelectContext(ctx, &ticketTypes,
		"SELECT id, event_id, name, price, description, available FROM ticket_types WHERE event_id = $1 ORDER BY id", eventID)
	return ticketTypes, err
}

// SearchEvents matches the query against title, description, venue name,
// city, category and tags. Unknown queries return an empty set.
func (s *Store) SearchEvents(ctx context.Context, query string) ([]models.Event, error) {
	defer observe("search_events", time.Now())
	pattern := "%" + query + "%"
	return s.selectEvents(ctx, eventSelect+`
		WHERE e.is_published AND (
			e.title ILIKE $1 OR e.description ILIKE $1 OR
			v.name ILIKE $1 OR v.city ILIKE $1 OR e.category ILIKE $1 OR
			array_to_string(e.tags, ' ') ILIKE $1
		) ORDER BY e.id`, pattern)
}

// EventsByCategory filters published events by category.
func (s *Store) EventsByCategory(ctx context.Context, category string) ([]models.Event, error) {
	defer observe("events_by_category", time.Now())
	return s.selectEvents(ctx,
		eventSelect+" WHERE e.is_published AND LOWER(e.category) = LOWER($1) ORDER BY e.id", category)
}

// EventsByTag filters published events by tag.
func (s *Store) EventsByTag(ctx context.Context, tag string) ([]models.Event, error) {
	defer observe("events_by_tag", time.Now())
	return s.selectEvents(ctx, eventSelect+`
		WHERE e.is_published AND EXISTS (
			SELECT 1 FROM unnest(e.tags) AS t WHERE LOWER(t) = LOWER($1)
		) ORDER BY e.id`, tag)
}

// EventsByVenue filters published events by venue.
func (s *Store) EventsByVenue(ctx context.Context, venueID string) ([]models.Event, error) {
	defer observe("events_by_venue", time.Now())
	return s.selectEvents(ctx,
		eventSelect+" WHERE e.is_published AND e.venue_id = $1 ORDER BY e.id", venueID)
}

// Categories lists the distinct categories of published events.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	defer observe("categories", time.Now())
	var categories []string
	err := s.db.SelectContext(ctx, &categories,
		"SELECT DISTINCT category FROM events WHERE is_published ORDER BY category")
	return categories, err
}

// Tags lists the distinct tags of published events.
func (s *Store) Tags(ctx context.Context) ([]string, error) {
	defer observe("tags", time.Now())
	var tags []string
	err := s.db.SelectContext(ctx, &tags, `
		SELECT DISTINCT tag FROM events e
		CROSS JOIN LATERAL unnest(e.tags) AS tag
		WHERE e.is_published ORDER BY tag`)
	return tags, err
}

type merchandiseRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Price       int64          `db:"price"`
	ImageRef    string         `db:"image_ref"`
	Category    string         `db:"category"`
	Variants    pq.StringArray `db:"variants"`
	InStock     bool           `db:"in_stock"`
}

func (r *merchandiseRow) toItem() models.MerchandiseItem {
	return models.MerchandiseItem{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageRef:    r.ImageRef,
		Category:    r.Category,
		Variants:    []string(r.Variants),
		InStock:     r.InStock,
	}
}

const merchandiseSelect = `
	SELECT id, name, description, price, image_ref, category, variants, in_stock
	FROM merchandise`

func (s *Store) selectMerchandise(ctx context.Context, query string, args ...interface{}) ([]models.MerchandiseItem, error) {
	var rows []merchandiseRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	items := make([]models.MerchandiseItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toItem())
	}
	return items, nil
}

// ListMerchandise returns all in-stock catalog products.
func (s *Store) ListMerchandise(ctx context.Context) ([]models.MerchandiseItem, error) {
	defer observe("list_merchandise", time.Now())
	return s.selectMerchandise(ctx, merchandiseSelect+" WHERE in_stock ORDER BY id")
}

// MerchandiseByCategory filters catalog products by category.
func (s *Store) MerchandiseByCategory(ctx context.Context, category string) ([]models.MerchandiseItem, error) {
	defer observe("merchandise_by_category", time.Now())
	return s.selectMerchandise(ctx,
		merchandiseSelect+" WHERE in_stock AND LOWER(category) = LOWER($1) ORDER BY id", category)
}

// GetMerchandiseItem retrieves one product by id; (nil, nil) when absent.
func (s *Store) GetMerchandiseItem(ctx context.Context, id int64) (*models.MerchandiseItem, error) {
	defer observe("get_merchandise_item", time.Now())
	var row merchandiseRow
	err := s.db.GetContext(ctx, &row, merchandiseSelect+" WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item := row.toItem()
	return &item, nil
}
