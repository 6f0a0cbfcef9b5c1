// Package booking handles contact-form requests for bookings, songwriting
// collaborations and general inquiries.
package booking

import (
	"storefront-service/internal/checkout"
)

// Request types
const (
	TypeBooking     = "BOOKING"
	TypeSongwriting = "SONGWRITING"
	TypeGeneral     = "GENERAL"
)

// Collaboration types for songwriting requests
const (
	CollaborationRemote   = "remote"
	CollaborationInPerson = "in-person"
	CollaborationBoth     = "both"
)

// Request is a submitted contact form. Context fields are required only for
// their own request type.
type Request struct {
	RequestType string `json:"request_type" binding:"required"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`

	// Booking fields
	EventDate string `json:"event_date,omitempty"`
	EventType string `json:"event_type,omitempty"`

	// Songwriting fields
	SongGenre         string `json:"song_genre,omitempty"`
	CollaborationType string `json:"collaboration_type,omitempty"`
}

// Validate collects all field errors for the request in one pass.
func (r *Request) Validate() checkout.FieldErrors {
	fe := checkout.ValidateContact(r.Name, r.Email, r.Phone)

	switch r.RequestType {
	case TypeBooking:
		if r.EventDate == "" {
			fe.Add("event_date", "Please select a date for your event.")
		}
		if r.EventType == "" {
			fe.Add("event_type", "Please select an event type.")
		}
	case TypeSongwriting:
		if r.SongGenre == "" {
			fe.Add("song_genre", "Please select a song genre.")
		}
		switch r.CollaborationType {
		case CollaborationRemote, CollaborationInPerson, CollaborationBoth:
		default:
			fe.Add("collaboration_type", "Please select a collaboration type.")
		}
	case TypeGeneral:
	default:
		fe.Add("request_type", "Please select a request type.")
	}

	return fe
}
