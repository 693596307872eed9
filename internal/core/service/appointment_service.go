package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

var (
	ErrInvalidAppointment = errors.New("invalid appointment")
	ErrSlotTaken          = errors.New("time slot already booked")
)

type AppointmentOptions struct {
	Services  []domain.ServiceOffering `json:"services"`
	TimeSlots []domain.TimeSlot        `json:"time_slots"`
}

type AppointmentConfirmation struct {
	Appointment  domain.Appointment
	ServiceLabel string
	Duration     string
	DisplayDate  string
}

type AppointmentService struct {
	repo   port.AppointmentRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAppointmentService(repo port.AppointmentRepository, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{repo: repo, logger: logger, now: time.Now}
}

func (s *AppointmentService) Options() AppointmentOptions {
	return AppointmentOptions{
		Services:  domain.ServiceOfferings(),
		TimeSlots: domain.TimeSlots(),
	}
}

func (s *AppointmentService) Book(ctx context.Context, req domain.AppointmentRequest) (AppointmentConfirmation, error) {
	now := s.now()

	date, err := req.Validate(now)
	if err != nil {
		return AppointmentConfirmation{}, fmt.Errorf("%w: %w", ErrInvalidAppointment, err)
	}

	appt := domain.Appointment{
		ID:        uuid.NewString(),
		Service:   req.Service,
		Date:      date,
		Time:      req.Time,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     req.Phone,
		ClockType: req.ClockType,
		Issue:     req.Issue,
		Notes:     req.Notes,
		Status:    domain.AppointmentStatusConfirmed,
		CreatedAt: now,
	}

	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, port.ErrDuplicateSlot) {
			return AppointmentConfirmation{}, ErrSlotTaken
		}
		return AppointmentConfirmation{}, fmt.Errorf("create appointment: %w", err)
	}

	offering, _ := domain.FindServiceOffering(appt.Service)
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("service", appt.Service),
		zap.String("date", date.Format(domain.DateLayout)),
		zap.String("time", appt.Time),
	)

	return AppointmentConfirmation{
		Appointment:  appt,
		ServiceLabel: offering.Label,
		Duration:     offering.Duration,
		DisplayDate:  domain.FormatLongDate(date),
	}, nil
}
