package get_availability

import (
	"strconv"

	getAvailability "github.com/m04kA/SMC-ShopBookingService/internal/usecase/get_availability"
)

// SlotResponse HTTP модель слота
type SlotResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// AvailabilityResponse HTTP модель доступности на дату
type AvailabilityResponse struct {
	ShopID          int64          `json:"shopId"`
	Date            string         `json:"date"`
	Weekday         string         `json:"weekday"`
	DurationMinutes int            `json:"durationMinutes"`
	Closed          bool           `json:"closed"`
	ClosureReason   string         `json:"closureReason,omitempty"`
	Open            string         `json:"open,omitempty"`
	Close           string         `json:"close,omitempty"`
	Slots           []SlotResponse `json:"slots"`
}

// ToUseCaseRequest собирает запрос из пути и query-параметров
func ToUseCaseRequest(slug, date, serviceIDStr, durationStr string) (*getAvailability.Request, error) {
	req := &getAvailability.Request{ShopSlug: slug, Date: date}

	if serviceIDStr != "" {
		id, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ServiceID = &id
	}
	if durationStr != "" {
		d, err := strconv.Atoi(durationStr)
		if err != nil {
			return nil, err
		}
		req.DurationMinutes = &d
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	day := resp.Availability
	result := &AvailabilityResponse{
		ShopID:          resp.ShopID,
		Date:            day.Date,
		Weekday:         day.Weekday,
		DurationMinutes: resp.DurationMinutes,
		Closed:          day.Closed,
		ClosureReason:   string(day.ClosureReason),
		Open:            day.Open.String(),
		Close:           day.Close.String(),
		Slots:           make([]SlotResponse, 0, len(day.Slots)),
	}

	for _, s := range day.Slots {
		result.Slots = append(result.Slots, SlotResponse{
			Time:      s.StartTime.String(),
			Available: s.Available,
			Reason:    string(s.Reason),
		})
	}

	return result
}
