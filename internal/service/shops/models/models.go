package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/scheduling"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при неизвестном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime возвращается при некорректном времени
	ErrInvalidTime = errors.New("invalid time")

	// ErrInvalidOverrideKind возвращается при неизвестном типе исключения
	ErrInvalidOverrideKind = errors.New("invalid override kind")

	// ErrInvalidDeposit возвращается при некорректной сумме депозита
	ErrInvalidDeposit = errors.New("invalid deposit amount")
)

var weekdayKeys = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// OverrideKind тип исключения для слота
type OverrideKind string

const (
	OverrideBlocked   OverrideKind = "blocked"
	OverrideForceOpen OverrideKind = "force_open"
)

// DaySchedule расписание одного дня в API
type DaySchedule struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// DayOverrides исключения одного дня в API
type DayOverrides struct {
	Blocked   []string `json:"blocked"`
	ForceOpen []string `json:"forceOpen"`
}

// Request модели

// UpdateCalendarRequest частичное обновление календаря магазина
// nil поле не меняется; в WeeklySchedule можно передать только изменяемые дни
type UpdateCalendarRequest struct {
	StaffID int64 `json:"-"`
	ShopID  int64 `json:"-"`

	WeeklySchedule  map[string]DaySchedule `json:"weeklySchedule,omitempty"`
	ClosedDates     *[]string              `json:"closedDates,omitempty"`
	DepositRequired *bool                  `json:"depositRequired,omitempty"`
	DepositAmount   *float64               `json:"depositAmount,omitempty"`
}

// ApplyTo валидирует запрос и применяет изменения к копии магазина
func (r *UpdateCalendarRequest) ApplyTo(shop domain.Shop) (*domain.Shop, error) {
	for key, dto := range r.WeeklySchedule {
		d, ok := scheduling.ParseWeekday(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, key)
		}
		day, err := dto.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", weekdayKeys[d], err)
		}
		shop.WeeklySchedule[d] = day
	}

	if r.ClosedDates != nil {
		dates := make([]string, 0, len(*r.ClosedDates))
		seen := map[string]struct{}{}
		for _, s := range *r.ClosedDates {
			if _, err := time.Parse(domain.DateFormat, s); err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			dates = append(dates, s)
		}
		sort.Strings(dates)
		shop.ClosedDates = dates
	}

	if r.DepositAmount != nil {
		if *r.DepositAmount < 0 {
			return nil, ErrInvalidDeposit
		}
		shop.DepositAmount = *r.DepositAmount
	}
	if r.DepositRequired != nil {
		shop.DepositRequired = *r.DepositRequired
	}

	return &shop, nil
}

func (d DaySchedule) toDomain() (domain.DaySchedule, error) {
	if d.Closed {
		return domain.DaySchedule{Open: domain.DefaultOpenTime, Close: domain.DefaultCloseTime, Closed: true}, nil
	}

	open, err := types.NewTimeStringFromString(d.Open)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: open %q", ErrInvalidTime, d.Open)
	}
	closeAt, err := types.NewTimeStringFromString(d.Close)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: close %q", ErrInvalidTime, d.Close)
	}

	day := domain.DaySchedule{Open: open, Close: closeAt}
	if err := scheduling.ValidateDaySchedule(day); err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return day, nil
}

// SetSlotOverrideRequest включение или снятие исключения для одного слота
type SetSlotOverrideRequest struct {
	StaffID int64  `json:"-"`
	ShopID  int64  `json:"-"`
	Date    string `json:"date"`    // YYYY-MM-DD
	Time    string `json:"time"`    // HH:MM
	Kind    string `json:"kind"`    // blocked | force_open
	Enabled bool   `json:"enabled"` // false - снять исключение
}

// Parse проверяет и разбирает поля запроса
func (r *SetSlotOverrideRequest) Parse() (string, types.TimeString, OverrideKind, error) {
	if _, err := time.Parse(domain.DateFormat, r.Date); err != nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
	}
	t, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidTime, r.Time)
	}
	kind := OverrideKind(r.Kind)
	if kind != OverrideBlocked && kind != OverrideForceOpen {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidOverrideKind, r.Kind)
	}
	return r.Date, t, kind, nil
}

// Response модели

// CalendarResponse календарь магазина
type CalendarResponse struct {
	ShopID          int64                   `json:"shopId"`
	Slug            string                  `json:"slug"`
	Name            string                  `json:"name"`
	WeeklySchedule  map[string]DaySchedule  `json:"weeklySchedule"`
	ClosedDates     []string                `json:"closedDates"`
	SlotOverrides   map[string]DayOverrides `json:"slotOverrides"`
	DepositRequired bool                    `json:"depositRequired"`
	DepositAmount   float64                 `json:"depositAmount"`
	ConfigIssues    []string                `json:"configIssues,omitempty"`
}

// FromDomainShop конвертирует domain.Shop в CalendarResponse
func FromDomainShop(s *domain.Shop) *CalendarResponse {
	resp := &CalendarResponse{
		ShopID:          s.ID,
		Slug:            s.Slug,
		Name:            s.Name,
		WeeklySchedule:  make(map[string]DaySchedule, 7),
		ClosedDates:     s.ClosedDates,
		SlotOverrides:   make(map[string]DayOverrides, len(s.SlotOverrides)),
		DepositRequired: s.DepositRequired,
		DepositAmount:   s.DepositAmount,
		ConfigIssues:    s.ConfigIssues,
	}
	if resp.ClosedDates == nil {
		resp.ClosedDates = []string{}
	}

	for d, day := range s.WeeklySchedule {
		resp.WeeklySchedule[weekdayKeys[d]] = DaySchedule{
			Open:   day.Open.String(),
			Close:  day.Close.String(),
			Closed: day.Closed,
		}
	}

	for date, day := range s.SlotOverrides {
		resp.SlotOverrides[date] = DayOverrides{
			Blocked:   timesToStrings(day.Blocked),
			ForceOpen: timesToStrings(day.ForceOpen),
		}
	}

	return resp
}

func timesToStrings(times []types.TimeString) []string {
	result := make([]string, 0, len(times))
	for _, t := range times {
		result = append(result, t.String())
	}
	return result
}
