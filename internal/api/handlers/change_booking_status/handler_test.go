package change_booking_status

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ShopBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-ShopBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ShopBookingService/pkg/logger"
)

type fakeService struct {
	op  domain.BookingOperation
	err error
}

func (f *fakeService) Apply(_ context.Context, op domain.BookingOperation, bookingID, _ int64) (*models.BookingResponse, error) {
	f.op = op
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID, Status: "confirmed", DepositStatus: "none"}, nil
}

func serve(svc *fakeService, path string) int {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/bookings/{bookingId}/{action:"+ActionPattern+"}", NewHandler(svc, logger.Nop()).Handle).
		Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, path, nil)
	req.Header.Set(middleware.StaffIDHeader, "500")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestHandle_Actions(t *testing.T) {
	for action, op := range actions {
		svc := &fakeService{}
		assert.Equal(t, http.StatusOK, serve(svc, "/bookings/1/"+action), action)
		assert.Equal(t, op, svc.op)
	}

	assert.Equal(t, http.StatusNotFound, serve(&fakeService{}, "/bookings/1/complete"), "not routed")
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{bookings.ErrBookingNotFound, http.StatusNotFound},
		{bookings.ErrAccessDenied, http.StatusForbidden},
		{fmt.Errorf("%w: approve from status confirmed", bookings.ErrInvalidTransition), http.StatusConflict},
		{bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, serve(&fakeService{err: tt.err}, "/bookings/1/approve"), tt.err.Error())
	}
}
