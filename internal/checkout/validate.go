package checkout

import (
	"errors"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Canonical Kenyan mobile pattern: optional +254/254 country code or a
// leading 0, then a carrier prefix digit (1 or 7) and eight more digits.
// Applied uniformly to contact and M-PESA phone fields.
var phonePattern = regexp.MustCompile(`^(?:\+254|254|0)[17]\d{8}$`)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cardExpiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVCPattern    = regexp.MustCompile(`^\d{3,4}$`)
	nonPhoneRunes     = regexp.MustCompile(`[^\d+]`)
)

// FieldErrors collects validation failures keyed by field name. All errors
// for one submission are reported together, never short-circuited.
type FieldErrors map[string]string

// Add records a message for a field, keeping the first message per field.
func (fe FieldErrors) Add(field, message string) {
	if _, ok := fe[field]; !ok {
		fe[field] = message
	}
}

// Empty reports whether validation passed.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// NormalizePhone strips internal whitespace and matches the canonical
// pattern. Returns the normalized number and whether it is valid.
func NormalizePhone(raw string) (string, bool) {
	clean := strings.Join(strings.Fields(raw), "")
	return clean, phonePattern.MatchString(clean)
}

// NormalizeMpesaPhone is the more tolerant variant used for the M-PESA
// payment field: non-digit characters are dropped and a missing leading zero
// is inserted when the rest of the number matches.
func NormalizeMpesaPhone(raw string) (string, bool) {
	clean := nonPhoneRunes.ReplaceAllString(raw, "")
	if phonePattern.MatchString(clean) {
		return clean, true
	}
	if strings.HasPrefix(clean, "7") {
		withZero := "0" + clean
		if phonePattern.MatchString(withZero) {
			return withZero, true
		}
	}
	return clean, false
}

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("kephone", func(fl validatorv10.FieldLevel) bool {
		_, ok := NormalizePhone(fl.Field().String())
		return ok
	}))
	must(v.RegisterValidation("kemail", func(fl validatorv10.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("cardnumber", func(fl validatorv10.FieldLevel) bool {
		clean := strings.Join(strings.Fields(fl.Field().String()), "")
		return cardNumberPattern.MatchString(clean)
	}))
	must(v.RegisterValidation("cardexpiry", func(fl validatorv10.FieldLevel) bool {
		return cardExpiryPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("cardcvc", func(fl validatorv10.FieldLevel) bool {
		return cardCVCPattern.MatchString(fl.Field().String())
	}))
	return v
}

var validate = newValidator()

type contactForm struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"required,kemail"`
	Phone string `validate:"required,kephone"`
}

type cardForm struct {
	Number string `validate:"required,cardnumber"`
	Name   string `validate:"required,min=2"`
	Expiry string `validate:"required,cardexpiry"`
	CVC    string `validate:"required,cardcvc"`
}

// ValidateContact checks the universal contact fields shared by every flow.
func ValidateContact(name, email, phone string) FieldErrors {
	fe := FieldErrors{}
	form := contactForm{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: phone,
	}
	err := validate.Struct(form)
	if err == nil {
		return fe
	}
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add("form", "Invalid submission")
		return fe
	}
	for _, e := range verrs {
		switch e.StructField() {
		case "Name":
			fe.Add("name", "Please enter your full name (at least 2 characters)")
		case "Email":
			fe.Add("email", "Please enter a valid email address")
		case "Phone":
			fe.Add("phone", "Please enter a valid Kenyan phone number (e.g., 07XX XXX XXX)")
		}
	}
	return fe
}

// ValidateCard checks card payment fields.
func ValidateCard(number, name, expiry, cvc string) FieldErrors {
	fe := FieldErrors{}
	form := cardForm{
		Number: number,
		Name:   strings.TrimSpace(name),
		Expiry: expiry,
		CVC:    cvc,
	}
	err := validate.Struct(form)
	if err == nil {
		return fe
	}
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add("form", "Invalid submission")
		return fe
	}
	for _, e := range verrs {
		switch e.StructField() {
		case "Number":
			fe.Add("card_number", "Please enter a valid 16-digit card number")
		case "Name":
			fe.Add("card_name", "Please enter the name on your card")
		case "Expiry":
			fe.Add("card_expiry", "Please enter a valid expiry date (MM/YY)")
		case "CVC":
			fe.Add("card_cvc", "Please enter a valid CVC code")
		}
	}
	return fe
}
