package marzpay

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxDescriptionLength = 255

// CollectionRequest is a validated, gateway-ready collection request.
type CollectionRequest struct {
	Reference   string
	PhoneNumber string
	Amount      int64
	Country     string
	Description string
	CallbackURL string
	Provider    Provider
}

// RequestBuilder validates raw collection input and produces requests
// the client can submit without further checks.
type RequestBuilder struct {
	normalizer         *PhoneNormalizer
	country            string
	defaultDescription string
	callbackURL        string
}

// NewRequestBuilder creates a builder. country is the ISO country code
// sent with every request and callbackURL receives webhook deliveries.
func NewRequestBuilder(normalizer *PhoneNormalizer, country, defaultDescription, callbackURL string) *RequestBuilder {
	return &RequestBuilder{
		normalizer:         normalizer,
		country:            country,
		defaultDescription: defaultDescription,
		callbackURL:        callbackURL,
	}
}

// Build validates amount and phone, fills defaults, and mints a fresh
// UUID reference when the caller does not supply one. The reference is
// the merchant-side idempotency key for the collection.
func (b *RequestBuilder) Build(amount int64, rawPhone, description, reference string) (*CollectionRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	phone, err := b.normalizer.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	if reference == "" {
		reference = uuid.NewString()
	}

	if description == "" {
		description = b.defaultDescription
	}
	if len(description) > maxDescriptionLength {
		cut := maxDescriptionLength
		for cut > 0 && !utf8.RuneStart(description[cut]) {
			cut--
		}
		description = description[:cut]
	}

	return &CollectionRequest{
		Reference:   reference,
		PhoneNumber: phone,
		Amount:      amount,
		Country:     b.country,
		Description: description,
		CallbackURL: b.callbackURL,
		Provider:    b.normalizer.DetectProvider(phone),
	}, nil
}
