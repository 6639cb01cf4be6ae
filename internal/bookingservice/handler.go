package bookingservice

import (
	"context"
	"encoding/json"

	"github.com/fitnova/clubapi/internal/common"
)

func NewBookingService(mb common.MessageProducer) *BookingService {
	return &BookingService{mb: mb}
}

// CreateBooking validates the request and publishes the booking created
// event for the mail worker to pick up.
func (s *BookingService) CreateBooking(ctx context.Context, b *Booking) error {
	v := common.NewValidator()
	validateName(v, b.FirstName, "first_name")
	validateName(v, b.LastName, "last_name")
	validateEmail(v, b.Email)
	validateServiceType(v, b.ServiceType)
	validateDate(v, b.Date)
	validateNotes(v, b.Notes)
	if !v.Valid() {
		return v.ValidationError()
	}

	msg, err := json.Marshal(b)
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, msg, common.BookingCreatedKey, common.BookingExchange)
}
