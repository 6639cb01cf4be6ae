package bookingservice

import (
	"github.com/fitnova/clubapi/internal/common"
)

// Booking is a trial-session or contact request submitted from the site.
// It is not persisted; it is validated and handed to the mail worker.
type Booking struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type"`
	Trainer     string `json:"trainer"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Notes       string `json:"notes"`
}

type BookingService struct {
	mb common.MessageProducer
}
