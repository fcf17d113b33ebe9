package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidDate возвращается при некорректной дате фильтра
	ErrInvalidDate = errors.New("invalid date")
)

// Request модели

// ListBookingsRequest запрос на получение бронирований магазина
type ListBookingsRequest struct {
	StaffID         int64
	ShopID          int64
	From            *string // YYYY-MM-DD (опционально)
	To              *string // YYYY-MM-DD (опционально)
	Status          *string // Фильтр по статусу (опционально)
	IncludeInactive bool    // Включить отклоненные и отмененные
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.ShopBookingsFilter, error) {
	filter := domain.ShopBookingsFilter{
		ShopID:          r.ShopID,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil {
		from, err := time.Parse(domain.DateFormat, *r.From)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.StartDate = &from
	}
	if r.To != nil {
		to, err := time.Parse(domain.DateFormat, *r.To)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.EndDate = &to
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, ErrInvalidDate
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	ShopID          int64  `json:"shopId"`
	CustomerID      int64  `json:"customerId"`
	ServiceID       int64  `json:"serviceId"`
	BookingDate     string `json:"date"` // "2025-10-15"
	StartTime       string `json:"time"` // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
	Source          string `json:"source"`

	DepositStatus   string  `json:"depositStatus"`
	DepositDeadline *string `json:"depositDeadline,omitempty"` // ISO 8601 format

	VisitCompleted bool    `json:"visitCompleted"`
	IsFirstVisit   bool    `json:"isFirstVisit"`
	ReminderSentAt *string `json:"reminderSentAt,omitempty"`

	// Денормализованные данные
	ServiceName   string  `json:"serviceName"`
	ServicePrice  float64 `json:"servicePrice"`
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Swept    int               `json:"completedVisits"` // визиты, завершенные при этом запросе
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:              b.ID,
		ShopID:          b.ShopID,
		CustomerID:      b.CustomerID,
		ServiceID:       b.ServiceID,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		Source:          string(b.Source),
		DepositStatus:   string(b.DepositStatus),
		DepositDeadline: formatTime(b.DepositDeadline),
		VisitCompleted:  b.VisitCompleted,
		IsFirstVisit:    b.IsFirstVisit,
		ReminderSentAt:  formatTime(b.ReminderSentAt),
		ServiceName:     b.ServiceName,
		ServicePrice:    b.ServicePrice,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if dto := FromDomainBooking(b); dto != nil {
			resp.Bookings = append(resp.Bookings, *dto)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusRejected, domain.StatusCancelled:
		return domain.BookingStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
