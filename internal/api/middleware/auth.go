package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/handlers"
)

// StaffIDHeader заголовок с ID сотрудника, проставляется внешним сервисом аутентификации
const StaffIDHeader = "X-Staff-ID"

const msgMissingStaffID = "отсутствует или некорректен заголовок X-Staff-ID"

type ctxKey int

const (
	ctxKeyStaffID ctxKey = iota
	ctxKeyRequestID
)

// Auth требует X-Staff-ID и кладет его в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID, err := strconv.ParseInt(r.Header.Get(StaffIDHeader), 10, 64)
		if err != nil || staffID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingStaffID)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyStaffID, staffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStaffID возвращает ID сотрудника из контекста запроса
func GetStaffID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyStaffID).(int64)
	return id, ok
}

// WithStaffID кладет ID сотрудника в контекст (для тестов обработчиков)
func WithStaffID(ctx context.Context, staffID int64) context.Context {
	return context.WithValue(ctx, ctxKeyStaffID, staffID)
}
