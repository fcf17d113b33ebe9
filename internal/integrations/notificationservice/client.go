package notificationservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с NotificationService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotificationService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendDepositRequest отправляет клиенту запрос на внесение депозита
func (c *Client) SendDepositRequest(ctx context.Context, req *DepositRequest) error {
	url := fmt.Sprintf("%s/internal/notifications/deposit-requests", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusCreated:
		return nil
	default:
		var errResp ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &errResp) == nil && errResp.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}
}

// SendDepositRequestWithGracefulDegradation отправляет уведомление с graceful degradation
// При недоступности сервиса возвращает ErrServiceDegraded; вызывающий код не прерывает операцию
func (c *Client) SendDepositRequestWithGracefulDegradation(ctx context.Context, req *DepositRequest) error {
	c.log.Info("Sending deposit request for booking_id=%d", req.BookingID)

	if err := c.SendDepositRequest(ctx, req); err != nil {
		// Повышаем уровень логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("NotificationService unavailable, applying graceful degradation for booking_id=%d: %v", req.BookingID, err)
		return fmt.Errorf("%w: booking_id=%d, error=%v", ErrServiceDegraded, req.BookingID, err)
	}

	c.log.Info("Deposit request sent for booking_id=%d", req.BookingID)
	return nil
}

// Noop клиент-заглушка, когда сервис уведомлений выключен
type Noop struct{}

func (Noop) SendDepositRequestWithGracefulDegradation(context.Context, *DepositRequest) error {
	return nil
}
