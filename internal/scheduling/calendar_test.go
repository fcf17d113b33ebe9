package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// 2025-10-15 is a Wednesday, 2025-10-19 is a Sunday
var (
	wednesday = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	sunday    = time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)
)

func TestResolveDay(t *testing.T) {
	schedule := domain.DefaultWeeklySchedule()

	t.Run("open weekday", func(t *testing.T) {
		hours := ResolveDay(schedule, nil, wednesday)
		assert.False(t, hours.Closed)
		assert.Equal(t, types.TimeString("09:00"), hours.Open)
		assert.Equal(t, types.TimeString("18:00"), hours.Close)
		assert.Equal(t, time.Wednesday, hours.Weekday)
	})

	t.Run("weekly closure", func(t *testing.T) {
		hours := ResolveDay(schedule, nil, sunday)
		assert.True(t, hours.Closed)
		assert.Equal(t, domain.ClosureWeekly, hours.Reason)
	})

	t.Run("one-off closure wins over open weekday", func(t *testing.T) {
		hours := ResolveDay(schedule, []string{"2025-10-14", "2025-10-15"}, wednesday)
		assert.True(t, hours.Closed)
		assert.Equal(t, domain.ClosureOneOff, hours.Reason)
	})

	t.Run("one-off closure on a weekly-closed day reports one-off", func(t *testing.T) {
		hours := ResolveDay(schedule, []string{"2025-10-19"}, sunday)
		assert.Equal(t, domain.ClosureOneOff, hours.Reason)
	})
}

func TestGenerateSlots(t *testing.T) {
	slots := GenerateSlots("09:00", "18:00", 30)

	assert.Len(t, slots, 18)
	assert.Equal(t, types.TimeString("09:00"), slots[0])
	assert.Equal(t, types.TimeString("17:30"), slots[len(slots)-1])

	assert.Equal(t, []types.TimeString{"09:00", "09:30"}, GenerateSlots("09:00", "09:45", 30))
	assert.Empty(t, GenerateSlots("bad", "18:00", 30))
	assert.Len(t, GenerateSlots("09:00", "10:00", 0), 2, "zero step falls back to 30 minutes")
}

func TestIsOnGrid(t *testing.T) {
	hours := DayHours{Open: "09:00", Close: "18:00"}

	assert.True(t, IsOnGrid(hours, "09:00", 30))
	assert.True(t, IsOnGrid(hours, "17:30", 30))
	assert.False(t, IsOnGrid(hours, "09:45", 30))
	assert.False(t, IsOnGrid(hours, "18:00", 30))
	assert.False(t, IsOnGrid(hours, "08:30", 30))
}
