package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type AppointmentStatus string

const AppointmentStatusConfirmed AppointmentStatus = "confirmed"

var ErrAppointmentField = errors.New("invalid appointment field")

type ServiceOffering struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Duration string `json:"duration"`
	Price    string `json:"price"`
}

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

var serviceOfferings = []ServiceOffering{
	{Value: "repair", Label: "Clock Repair", Duration: "1-2 hours", Price: "$75-150"},
	{Value: "maintenance", Label: "Maintenance Service", Duration: "30-60 mins", Price: "$50-100"},
	{Value: "restoration", Label: "Antique Restoration", Duration: "2-4 hours", Price: "$200-500"},
	{Value: "appraisal", Label: "Clock Appraisal", Duration: "30 mins", Price: "$75"},
	{Value: "consultation", Label: "Design Consultation", Duration: "45 mins", Price: "$100"},
}

var timeSlots = []TimeSlot{
	{Time: "9:00 AM", Available: true},
	{Time: "10:00 AM", Available: true},
	{Time: "11:00 AM", Available: false},
	{Time: "12:00 PM", Available: true},
	{Time: "1:00 PM", Available: false},
	{Time: "2:00 PM", Available: true},
	{Time: "3:00 PM", Available: true},
	{Time: "4:00 PM", Available: true},
	{Time: "5:00 PM", Available: false},
}

func ServiceOfferings() []ServiceOffering {
	out := make([]ServiceOffering, len(serviceOfferings))
	copy(out, serviceOfferings)
	return out
}

func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

func FindServiceOffering(value string) (ServiceOffering, bool) {
	for _, s := range serviceOfferings {
		if s.Value == value {
			return s, true
		}
	}
	return ServiceOffering{}, false
}

func FindTimeSlot(t string) (TimeSlot, bool) {
	for _, s := range timeSlots {
		if s.Time == t {
			return s, true
		}
	}
	return TimeSlot{}, false
}

type AppointmentRequest struct {
	Service   string
	Date      string
	Time      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	ClockType string
	Issue     string
	Notes     string
}

type Appointment struct {
	ID        string
	Service   string
	Date      time.Time
	Time      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	ClockType string
	Issue     string
	Notes     string
	Status    AppointmentStatus
	CreatedAt time.Time
}

// Validate checks the request against the booking rules relative to now and
// returns the parsed appointment date.
//
// Service, date, time, first name and email are required. Dates before today
// and Sundays cannot be booked, nor can unavailable slots.
func (r AppointmentRequest) Validate(now time.Time) (time.Time, error) {
	required := []struct {
		field string
		value string
	}{
		{"service", r.Service},
		{"date", r.Date},
		{"time", r.Time},
		{"first_name", r.FirstName},
		{"email", r.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return time.Time{}, fmt.Errorf("%w: %s is required", ErrAppointmentField, f.field)
		}
	}

	if _, ok := FindServiceOffering(r.Service); !ok {
		return time.Time{}, fmt.Errorf("%w: unknown service %q", ErrAppointmentField, r.Service)
	}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		return time.Time{}, fmt.Errorf("%w: email %q is not valid", ErrAppointmentField, r.Email)
	}

	date, err := time.ParseInLocation(DateLayout, r.Date, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrAppointmentField)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return time.Time{}, fmt.Errorf("%w: date is in the past", ErrAppointmentField)
	}
	if date.Weekday() == time.Sunday {
		return time.Time{}, fmt.Errorf("%w: closed on sundays", ErrAppointmentField)
	}

	slot, ok := FindTimeSlot(r.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown time slot %q", ErrAppointmentField, r.Time)
	}
	if !slot.Available {
		return time.Time{}, fmt.Errorf("%w: time slot %s is not available", ErrAppointmentField, r.Time)
	}

	return date, nil
}

// FormatLongDate renders dates the way confirmations show them,
// e.g. "Tuesday, October 20, 2026".
func FormatLongDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}
