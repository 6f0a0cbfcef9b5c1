package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"0712345678", "0712345678", true},
		{"0112345678", "0112345678", true},
		{"+254712345678", "+254712345678", true},
		{"254712345678", "254712345678", true},
		{"07 12 345 678", "0712345678", true},
		{"0812345678", "0812345678", false},
		{"12345", "12345", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, valid := NormalizePhone(tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		assert.Equal(t, tt.valid, valid, "raw=%q", tt.raw)
	}
}

func TestNormalizeMpesaPhoneInsertsLeadingZero(t *testing.T) {
	got, valid := NormalizeMpesaPhone("712345678")
	assert.True(t, valid)
	assert.Equal(t, "0712345678", got)

	got, valid = NormalizeMpesaPhone("07 12-345-678")
	assert.True(t, valid)
	assert.Equal(t, "0712345678", got)

	_, valid = NormalizeMpesaPhone("812345678")
	assert.False(t, valid)
}

func TestValidateContactCollectsAllErrors(t *testing.T) {
	fe := ValidateContact("", "not-an-email", "12345")

	assert.Len(t, fe, 3)
	assert.Equal(t, "Please enter your full name (at least 2 characters)", fe["name"])
	assert.Equal(t, "Please enter a valid email address", fe["email"])
	assert.Equal(t, "Please enter a valid Kenyan phone number (e.g., 07XX XXX XXX)", fe["phone"])
}

func TestValidateContactAcceptsValidInput(t *testing.T) {
	fe := ValidateContact("Jane Wanjiku", "jane@example.com", "0712345678")
	assert.True(t, fe.Empty())
}

func TestValidateContactRejectsShortName(t *testing.T) {
	fe := ValidateContact("J", "jane@example.com", "0712345678")
	assert.Equal(t, "Please enter your full name (at least 2 characters)", fe["name"])
	assert.Len(t, fe, 1)
}

func TestValidateCard(t *testing.T) {
	fe := ValidateCard("4111111111111111", "Jane Wanjiku", "12/27", "123")
	assert.True(t, fe.Empty())

	// Spaces in the card number are tolerated
	fe = ValidateCard("4111 1111 1111 1111", "Jane Wanjiku", "12/27", "1234")
	assert.True(t, fe.Empty())

	fe = ValidateCard("1234", "", "13-27", "12")
	assert.Equal(t, "Please enter a valid 16-digit card number", fe["card_number"])
	assert.Equal(t, "Please enter the name on your card", fe["card_name"])
	assert.Equal(t, "Please enter a valid expiry date (MM/YY)", fe["card_expiry"])
	assert.Equal(t, "Please enter a valid CVC code", fe["card_cvc"])
}

func TestFieldErrorsFirstMessageWins(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("name", "first")
	fe.Add("name", "second")
	assert.Equal(t, "first", fe["name"])
}
