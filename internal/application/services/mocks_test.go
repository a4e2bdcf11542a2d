package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
)

// Mocks shared by the service tests

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]*entities.Appointment, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id string, expected, target entities.AppointmentStatus, stamp *repositories.StatusStamp) (*entities.Appointment, error) {
	args := m.Called(ctx, id, expected, target, stamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ScheduleSummary(ctx context.Context, doctorID string, from, to time.Time) (int, time.Time, error) {
	args := m.Called(ctx, doctorID, from, to)
	return args.Int(0), args.Get(1).(time.Time), args.Error(2)
}

type MockFollowUpRepository struct {
	mock.Mock
}

func (m *MockFollowUpRepository) Create(ctx context.Context, followUp *entities.FollowUp) error {
	args := m.Called(ctx, followUp)
	return args.Error(0)
}

func (m *MockFollowUpRepository) GetByID(ctx context.Context, id string) (*entities.FollowUp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpRepository) Update(ctx context.Context, followUp *entities.FollowUp) error {
	args := m.Called(ctx, followUp)
	return args.Error(0)
}

func (m *MockFollowUpRepository) ListByPatient(ctx context.Context, patientID string) ([]*entities.FollowUp, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpRepository) ListPendingByDoctor(ctx context.Context, doctorID string) ([]*entities.FollowUp, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FollowUp), args.Error(1)
}

func (m *MockFollowUpRepository) ListDueReminders(ctx context.Context, now time.Time) ([]*entities.FollowUp, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FollowUp), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.AppointmentEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) SendText(ctx context.Context, toPhone, message string) error {
	args := m.Called(ctx, toPhone, message)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entities.AppointmentNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*entities.AppointmentNotification, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AppointmentNotification), args.Error(1)
}
