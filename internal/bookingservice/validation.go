package bookingservice

import (
	"time"

	"github.com/fitnova/clubapi/internal/common"
)

func validateName(v *common.Validator, name, field string) {
	v.Check(name != "", field, "must be provided")
	v.Check(v.CheckStringLength(name, 1, 100), field, "must not be longer than 100 characters")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	if email != "" {
		v.Check(v.CheckEmail(email), "email", "must be a valid email address")
	}
}

func validateServiceType(v *common.Validator, serviceType string) {
	v.Check(serviceType != "", "service_type", "must be provided")
}

func validateDate(v *common.Validator, date string) {
	v.Check(date != "", "date", "must be provided")
	if date == "" {
		return
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		v.AddError("date", "must be a date in the form YYYY-MM-DD")
	}
}

func validateNotes(v *common.Validator, notes string) {
	v.Check(v.CheckStringLength(notes, 0, 2000), "notes", "must not be longer than 2000 characters")
}
