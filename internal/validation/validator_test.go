package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingInput struct {
	Name  string `json:"customerName" validate:"required,max=100"`
	Phone string `json:"customerPhone" validate:"required,phone"`
	Date  string `json:"date" validate:"required,date"`
	Time  string `json:"time" validate:"required,clock"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	valid := bookingInput{Name: "Kim", Phone: "010-1234-5678", Date: "2025-10-15", Time: "10:30"}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name  string
		mut   func(*bookingInput)
		field string
	}{
		{name: "missing name", mut: func(b *bookingInput) { b.Name = "" }, field: "customerName"},
		{name: "short phone", mut: func(b *bookingInput) { b.Phone = "12345" }, field: "customerPhone"},
		{name: "letters in phone", mut: func(b *bookingInput) { b.Phone = "010-CALL-ME" }, field: "customerPhone"},
		{name: "bad date", mut: func(b *bookingInput) { b.Date = "15.10.2025" }, field: "date"},
		{name: "bad time", mut: func(b *bookingInput) { b.Time = "25:00" }, field: "time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)

			err := v.Struct(in)
			require.Error(t, err)
			assert.Equal(t, tt.field, FirstInvalidField(err))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "01012345678", NormalizePhone(" 010-1234-5678 "))
	assert.Equal(t, "+821012345678", NormalizePhone("+82 (10) 1234.5678"))
}
