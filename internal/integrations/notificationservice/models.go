package notificationservice

// DepositRequest запрос на уведомление клиента о необходимости внести депозит
type DepositRequest struct {
	BookingID     int64   `json:"bookingId"`
	ShopID        int64   `json:"shopId"`
	CustomerPhone string  `json:"customerPhone"`
	CustomerName  string  `json:"customerName"`
	BookingDate   string  `json:"bookingDate"`
	StartTime     string  `json:"startTime"`
	Amount        float64 `json:"amount"`
	Deadline      string  `json:"deadline"` // RFC3339
}

// ErrorResponse модель ошибки от NotificationService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
