package scheduling

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/types"
)

// Stored calendar configuration is operator-edited JSON. Parsing never fails:
// malformed parts fall back to safe defaults and are reported as issues.

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type storedDay struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// ParseWeeklySchedule decodes either a 7-element array (index 0 = Sunday) or an
// object keyed by weekday number/name. Missing or invalid days get the default.
func ParseWeeklySchedule(raw []byte) (domain.WeeklySchedule, []string) {
	schedule := domain.DefaultWeeklySchedule()
	if isEmptyJSON(raw) {
		return schedule, nil
	}

	var issues []string
	entries := map[time.Weekday]json.RawMessage{}

	var asArray []json.RawMessage
	var asObject map[string]json.RawMessage

	switch {
	case json.Unmarshal(raw, &asArray) == nil:
		if len(asArray) != 7 {
			return schedule, []string{fmt.Sprintf("weekly schedule: expected 7 days, got %d", len(asArray))}
		}
		for i, e := range asArray {
			entries[time.Weekday(i)] = e
		}
	case json.Unmarshal(raw, &asObject) == nil:
		for key, e := range asObject {
			d, ok := ParseWeekday(key)
			if !ok {
				issues = append(issues, fmt.Sprintf("weekly schedule: unknown day %q", key))
				continue
			}
			entries[d] = e
		}
	default:
		return schedule, []string{"weekly schedule: malformed JSON, default schedule applied"}
	}

	for d, e := range entries {
		day, err := parseDay(e)
		if err != nil {
			issues = append(issues, fmt.Sprintf("weekly schedule: %s: %v", d, err))
			continue
		}
		schedule[d] = day
	}

	return schedule, issues
}

// ValidateDaySchedule checks open < close for an open day
func ValidateDaySchedule(day domain.DaySchedule) error {
	if day.Closed {
		return nil
	}
	if err := day.Open.Validate(); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if err := day.Close.Validate(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if !day.Open.IsBefore(day.Close) {
		return fmt.Errorf("open %s must be before close %s", day.Open, day.Close)
	}
	return nil
}

func parseDay(raw json.RawMessage) (domain.DaySchedule, error) {
	var sd storedDay
	if err := json.Unmarshal(raw, &sd); err != nil {
		return domain.DaySchedule{}, fmt.Errorf("malformed day: %v", err)
	}

	if sd.Closed {
		day := domain.DaySchedule{Closed: true, Open: domain.DefaultOpenTime, Close: domain.DefaultCloseTime}
		if open, err := types.NewTimeStringFromString(sd.Open); err == nil {
			day.Open = open
		}
		if cl, err := types.NewTimeStringFromString(sd.Close); err == nil {
			day.Close = cl
		}
		return day, nil
	}

	open, err := types.NewTimeStringFromString(sd.Open)
	if err != nil {
		return domain.DaySchedule{}, err
	}
	cl, err := types.NewTimeStringFromString(sd.Close)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	day := domain.DaySchedule{Open: open, Close: cl}
	if err := ValidateDaySchedule(day); err != nil {
		return domain.DaySchedule{}, err
	}
	return day, nil
}

// ParseWeekday accepts a weekday number (0 = Sunday) or an English name
func ParseWeekday(key string) (time.Weekday, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 0 && n <= 6 {
			return time.Weekday(n), true
		}
		return 0, false
	}
	d, ok := weekdayNames[key]
	return d, ok
}

// EncodeWeeklySchedule stores the schedule as a 7-element array
func EncodeWeeklySchedule(schedule domain.WeeklySchedule) ([]byte, error) {
	days := make([]storedDay, 0, len(schedule))
	for _, d := range schedule {
		days = append(days, storedDay{Open: d.Open.String(), Close: d.Close.String(), Closed: d.Closed})
	}
	return json.Marshal(days)
}

// ParseSlotOverrides decodes {"YYYY-MM-DD": {"blocked": [...], "forceOpen": [...]}}.
// Anything that is not the expected shape degrades to an empty set.
func ParseSlotOverrides(raw []byte) (domain.SlotOverrideMap, []string) {
	overrides := domain.SlotOverrideMap{}
	if isEmptyJSON(raw) {
		return overrides, nil
	}

	var byDate map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byDate); err != nil {
		return overrides, []string{"slot overrides: malformed JSON, ignored"}
	}

	var issues []string
	for date, value := range byDate {
		if _, err := time.Parse(domain.DateFormat, date); err != nil {
			issues = append(issues, fmt.Sprintf("slot overrides: invalid date %q", date))
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(value, &fields); err != nil {
			issues = append(issues, fmt.Sprintf("slot overrides: %s: not an object", date))
			continue
		}

		day := domain.DayOverrides{
			Blocked:   parseTimeList(fields["blocked"], date, "blocked", &issues),
			ForceOpen: parseTimeList(fields["forceOpen"], date, "forceOpen", &issues),
		}
		if !day.IsEmpty() {
			overrides[date] = day
		}
	}

	return overrides, issues
}

func parseTimeList(raw json.RawMessage, date, field string, issues *[]string) []types.TimeString {
	if isEmptyJSON(raw) {
		return nil
	}

	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		*issues = append(*issues, fmt.Sprintf("slot overrides: %s.%s: not an array", date, field))
		return nil
	}

	result := make([]types.TimeString, 0, len(items))
	seen := map[types.TimeString]struct{}{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			*issues = append(*issues, fmt.Sprintf("slot overrides: %s.%s: non-string entry", date, field))
			continue
		}
		t, err := types.NewTimeStringFromString(s)
		if err != nil {
			*issues = append(*issues, fmt.Sprintf("slot overrides: %s.%s: %v", date, field, err))
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}
	return result
}

// EncodeSlotOverrides drops empty dates
func EncodeSlotOverrides(overrides domain.SlotOverrideMap) ([]byte, error) {
	clean := domain.SlotOverrideMap{}
	for date, day := range overrides {
		if !day.IsEmpty() {
			clean[date] = day
		}
	}
	return json.Marshal(clean)
}

// ParseClosedDates decodes a JSON array of YYYY-MM-DD strings, skipping invalid entries
func ParseClosedDates(raw []byte) ([]string, []string) {
	if isEmptyJSON(raw) {
		return []string{}, nil
	}

	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}, []string{"closed dates: malformed JSON, ignored"}
	}

	var issues []string
	dates := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			issues = append(issues, "closed dates: non-string entry")
			continue
		}
		if _, err := time.Parse(domain.DateFormat, s); err != nil {
			issues = append(issues, fmt.Sprintf("closed dates: invalid date %q", s))
			continue
		}
		dates = append(dates, s)
	}
	return dates, issues
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
