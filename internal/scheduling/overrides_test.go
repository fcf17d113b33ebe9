package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

func TestLookupOverrides(t *testing.T) {
	overrides := domain.SlotOverrideMap{
		"2025-10-20": {
			Blocked:   []types.TimeString{"10:00", "10:30"},
			ForceOpen: []types.TimeString{"15:00"},
		},
	}

	set := LookupOverrides(overrides, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC))
	assert.True(t, set.IsBlocked("10:00"))
	assert.True(t, set.IsBlocked("10:30"))
	assert.False(t, set.IsBlocked("11:00"))
	assert.True(t, set.IsForceOpen("15:00"))
	assert.False(t, set.IsForceOpen("10:00"))

	// другой день
	other := LookupOverrides(overrides, time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC))
	assert.False(t, other.IsBlocked("10:00"))
	assert.False(t, other.IsForceOpen("15:00"))

	empty := LookupOverrides(nil, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC))
	assert.False(t, empty.IsBlocked("10:00"))
}
