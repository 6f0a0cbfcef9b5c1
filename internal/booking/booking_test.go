package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest(requestType string) Request {
	return Request{
		RequestType: requestType,
		Name:        "Jane Wanjiku",
		Email:       "jane@example.com",
		Phone:       "0712345678",
		Message:     "Looking forward to working together.",
	}
}

func TestGeneralRequestOnlyNeedsContact(t *testing.T) {
	req := validRequest(TypeGeneral)
	assert.True(t, req.Validate().Empty())
}

func TestBookingRequestNeedsEventFields(t *testing.T) {
	req := validRequest(TypeBooking)
	fe := req.Validate()
	assert.Equal(t, "Please select a date for your event.", fe["event_date"])
	assert.Equal(t, "Please select an event type.", fe["event_type"])

	req.EventDate = "2026-12-12"
	req.EventType = "wedding"
	assert.True(t, req.Validate().Empty())
}

func TestSongwritingRequestNeedsGenreAndCollaboration(t *testing.T) {
	req := validRequest(TypeSongwriting)
	fe := req.Validate()
	assert.Equal(t, "Please select a song genre.", fe["song_genre"])
	assert.Equal(t, "Please select a collaboration type.", fe["collaboration_type"])

	req.SongGenre = "afro-pop"
	req.CollaborationType = "virtual" // not a recognised option
	fe = req.Validate()
	assert.Equal(t, "Please select a collaboration type.", fe["collaboration_type"])

	req.CollaborationType = CollaborationRemote
	assert.True(t, req.Validate().Empty())
}

func TestContactErrorsAreCollected(t *testing.T) {
	req := Request{RequestType: TypeGeneral, Email: "bad", Phone: "12345"}
	fe := req.Validate()
	assert.Contains(t, fe, "name")
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "phone")
}

func TestUnknownRequestTypeRejected(t *testing.T) {
	req := validRequest("MERCH")
	fe := req.Validate()
	assert.Contains(t, fe, "request_type")
}
