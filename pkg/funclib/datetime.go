package funclib

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
)

// Datetime returns the datetime namespace: at, first, offset, parse.
// Every function returns a datetime value; the position's converter
// truncates it to a date when the schema asks for one.
func Datetime() engine.Namespace {
	return engine.Namespace{
		"at":     engine.New(datetimeAt),
		"first":  engine.New(datetimeFirst),
		"offset": engine.New(datetimeOffset),
		"parse":  engine.New(datetimeParse),
	}
}

// maxSkipRetries bounds the search past excluded dates to a bit over a
// full year of candidates.
const maxSkipRetries = 366

var isoLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// readDatetime accepts a datetime, a date (promoted to midnight), or an
// ISO-formatted string.
func readDatetime(v conf.Value) (time.Time, error) {
	switch x := v.(type) {
	case conf.DateTime:
		return x.Time, nil
	case conf.Date:
		return x.Time, nil
	case conf.String:
		s := strings.TrimSpace(x.Value)
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date: %q", x.Value)
	default:
		return time.Time{}, fmt.Errorf("invalid date: expected a string or date/datetime, got %s", conf.TypeName(v))
	}
}

var offsetUnits = map[string]time.Duration{
	"weeks":   7 * 24 * time.Hour,
	"days":    24 * time.Hour,
	"hours":   time.Hour,
	"minutes": time.Minute,
	"seconds": time.Second,
}

var offsetPartPattern = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute|second)s?$`)

// readOffset accepts either a comma-separated string of "<n> <unit>"
// pairs or a dict of unit names to integers.
func readOffset(v conf.Value) (time.Duration, error) {
	switch x := v.(type) {
	case *conf.Mapping:
		var total time.Duration
		var unknown []string
		for _, key := range x.Keys() {
			unit, ok := offsetUnits[key]
			if !ok {
				unknown = append(unknown, key)
				continue
			}
			raw, _ := x.Get(key)
			n, ok := raw.(conf.Int)
			if !ok {
				return 0, fmt.Errorf("offset values must be integers, got %s for %q", conf.TypeName(raw), key)
			}
			total += time.Duration(n) * unit
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return 0, fmt.Errorf("unknown unit(s) in \"by\": %s", strings.Join(unknown, ", "))
		}
		return total, nil

	case conf.String:
		var total time.Duration
		for _, part := range strings.Split(x.Value, ",") {
			m := offsetPartPattern.FindStringSubmatch(strings.TrimSpace(part))
			if m == nil {
				return 0, fmt.Errorf("cannot parse offset: %q", x.Value)
			}
			amount, _ := strconv.Atoi(m[1])
			total += time.Duration(amount) * offsetUnits[m[2]+"s"]
		}
		return total, nil

	default:
		return 0, fmt.Errorf("\"by\" must be a string or dict, got %s", conf.TypeName(v))
	}
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// parseWeekdays accepts day names separated by commas, spaces, or "or".
func parseWeekdays(raw string) (map[time.Weekday]bool, error) {
	normalized := strings.ReplaceAll(raw, ",", " ")
	normalized = strings.ReplaceAll(normalized, " or ", " ")
	out := make(map[time.Weekday]bool)
	for _, part := range strings.Fields(normalized) {
		day, ok := weekdayNames[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("invalid day of week: %q", part)
		}
		out[day] = true
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("invalid day of week: %q", raw)
	}
	return out, nil
}

// findFirstWeekday walks day by day from the reference, which is itself
// excluded, until it hits one of the target weekdays. The time component
// is preserved.
func findFirstWeekday(reference time.Time, weekdays map[time.Weekday]bool, before bool) time.Time {
	step := 1
	if before {
		step = -1
	}
	cursor := reference.AddDate(0, 0, step)
	for !weekdays[cursor.Weekday()] {
		cursor = cursor.AddDate(0, 0, step)
	}
	return cursor
}

func readSkipDates(v conf.Value) (map[string]bool, error) {
	seq, ok := v.(conf.Sequence)
	if !ok {
		return nil, fmt.Errorf("\"skip\" must be a list of dates")
	}
	out := make(map[string]bool, len(seq))
	for _, el := range seq {
		t, err := readDatetime(el)
		if err != nil {
			return nil, err
		}
		out[t.Format("2006-01-02")] = true
	}
	return out, nil
}

// skipExcluded advances past excluded dates using the caller's step
// function, giving up after maxSkipRetries candidates.
func skipExcluded(result time.Time, skip map[string]bool, next func(time.Time) time.Time) (time.Time, error) {
	for retries := 0; skip[result.Format("2006-01-02")]; retries++ {
		if retries >= maxSkipRetries {
			return time.Time{}, fmt.Errorf("could not find a valid date: all candidates are excluded")
		}
		result = next(result)
	}
	return result, nil
}

// datetimeAt combines a date with a time-of-day string.
func datetimeAt(args engine.FunctionArgs) (conf.Value, error) {
	m, ok := args.Input.(*conf.Mapping)
	if !ok {
		return nil, fmt.Errorf("input to \"at\" must be a dict")
	}
	dateRaw, hasDate := m.Get("date")
	timeRaw, hasTime := m.Get("time")
	if !hasDate || !hasTime {
		return nil, fmt.Errorf("input to \"at\" must contain \"date\" and \"time\"")
	}

	reference, err := readDatetime(dateRaw)
	if err != nil {
		return nil, err
	}
	ts, ok := timeRaw.(conf.String)
	if !ok {
		return nil, fmt.Errorf("\"time\" must be a string, got %s", conf.TypeName(timeRaw))
	}
	clock, err := parseClock(ts.Value)
	if err != nil {
		return nil, err
	}
	return conf.DateTime{Time: atClock(reference, clock)}, nil
}

type clockTime struct {
	hour, minute, second int
}

func parseClock(s string) (clockTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return clockTime{t.Hour(), t.Minute(), t.Second()}, nil
		}
	}
	return clockTime{}, fmt.Errorf("invalid time: %q", s)
}

func atClock(day time.Time, c clockTime) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, c.second, 0, day.Location())
}

// direction reads the mutually exclusive before/after keys.
func direction(m *conf.Mapping, fnName string) (reference conf.Value, before bool, err error) {
	beforeRaw, hasBefore := m.Get("before")
	afterRaw, hasAfter := m.Get("after")
	if !hasBefore && !hasAfter {
		return nil, false, fmt.Errorf("input to %q must contain either \"before\" or \"after\"", fnName)
	}
	if hasBefore && hasAfter {
		return nil, false, fmt.Errorf("input to %q must not contain both \"before\" and \"after\"", fnName)
	}
	if hasBefore {
		return beforeRaw, true, nil
	}
	return afterRaw, false, nil
}

// datetimeOffset shifts a reference date by an amount, optionally
// stepping over excluded dates one day at a time.
func datetimeOffset(args engine.FunctionArgs) (conf.Value, error) {
	m, ok := args.Input.(*conf.Mapping)
	if !ok {
		return nil, fmt.Errorf("input to \"offset\" must be a dict")
	}
	refRaw, before, err := direction(m, "offset")
	if err != nil {
		return nil, err
	}
	byRaw, hasBy := m.Get("by")
	if !hasBy {
		return nil, fmt.Errorf("input to \"offset\" must contain \"by\"")
	}

	var skip map[string]bool
	if skipRaw, hasSkip := m.Get("skip"); hasSkip {
		if skip, err = readSkipDates(skipRaw); err != nil {
			return nil, err
		}
	}

	reference, err := readDatetime(refRaw)
	if err != nil {
		return nil, err
	}
	delta, err := readOffset(byRaw)
	if err != nil {
		return nil, err
	}

	result := reference.Add(delta)
	dayStep := 1
	if before {
		result = reference.Add(-delta)
		dayStep = -1
	}

	if len(skip) > 0 {
		result, err = skipExcluded(result, skip, func(t time.Time) time.Time {
			return t.AddDate(0, 0, dayStep)
		})
		if err != nil {
			return nil, err
		}
	}
	return conf.DateTime{Time: result}, nil
}

// datetimeFirst finds the first occurrence of a weekday before or after
// a reference date.
func datetimeFirst(args engine.FunctionArgs) (conf.Value, error) {
	m, ok := args.Input.(*conf.Mapping)
	if !ok {
		return nil, fmt.Errorf("input to \"first\" must be a dict")
	}
	weekdayRaw, hasWeekday := m.Get("weekday")
	if !hasWeekday {
		return nil, fmt.Errorf("input to \"first\" must contain \"weekday\"")
	}
	refRaw, before, err := direction(m, "first")
	if err != nil {
		return nil, err
	}

	var weekdays map[time.Weekday]bool
	switch w := weekdayRaw.(type) {
	case conf.String:
		if weekdays, err = parseWeekdays(w.Value); err != nil {
			return nil, err
		}
	case conf.Sequence:
		weekdays = make(map[time.Weekday]bool)
		for _, el := range w {
			s, ok := el.(conf.String)
			if !ok {
				return nil, fmt.Errorf("the \"weekday\" key must be a string or list of strings")
			}
			day, found := weekdayNames[strings.ToLower(s.Value)]
			if !found {
				return nil, fmt.Errorf("invalid day of week: %q", s.Value)
			}
			weekdays[day] = true
		}
	default:
		return nil, fmt.Errorf("the \"weekday\" key must be a string or list of strings")
	}

	var skip map[string]bool
	if skipRaw, hasSkip := m.Get("skip"); hasSkip {
		if skip, err = readSkipDates(skipRaw); err != nil {
			return nil, err
		}
	}

	reference, err := readDatetime(refRaw)
	if err != nil {
		return nil, err
	}
	result := findFirstWeekday(reference, weekdays, before)

	if len(skip) > 0 {
		result, err = skipExcluded(result, skip, func(t time.Time) time.Time {
			return findFirstWeekday(t, weekdays, before)
		})
		if err != nil {
			return nil, err
		}
	}
	return conf.DateTime{Time: result}, nil
}

var (
	atSuffixPattern     = regexp.MustCompile(`(?i) at (\d{2}):(\d{2}):(\d{2})$`)
	firstPhrasePattern  = regexp.MustCompile(`(?i)^first\s+(.+?)\s+(after|before)\s+(.+)$`)
	offsetPhrasePattern = regexp.MustCompile(`(?i)^(.+?)\s+(after|before)\s+(.+)$`)
)

// datetimeParse evaluates a natural-language date phrase: an ISO date or
// datetime, "<offset> after|before <date>", or "first <weekdays>
// after|before <date>", each optionally ending in " at HH:MM:SS".
func datetimeParse(args engine.FunctionArgs) (conf.Value, error) {
	s, ok := args.Input.(conf.String)
	if !ok {
		return nil, fmt.Errorf("input to \"parse\" must be a string")
	}

	phrase := s.Value
	var clock *clockTime
	if m := atSuffixPattern.FindStringSubmatch(phrase); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		second, _ := strconv.Atoi(m[3])
		if hour > 23 || minute > 59 || second > 59 {
			return nil, fmt.Errorf("invalid time in %q", phrase)
		}
		clock = &clockTime{hour, minute, second}
		phrase = atSuffixPattern.ReplaceAllString(phrase, "")
	}

	result, err := parsePhrase(phrase)
	if err != nil {
		return nil, fmt.Errorf("cannot parse date: %q", s.Value)
	}
	if clock != nil {
		result = atClock(result, *clock)
	}
	return conf.DateTime{Time: result}, nil
}

func parsePhrase(phrase string) (time.Time, error) {
	if m := firstPhrasePattern.FindStringSubmatch(phrase); m != nil {
		weekdays, err := parseWeekdays(m[1])
		if err == nil {
			reference, err := readDatetime(conf.Str(m[3]))
			if err != nil {
				return time.Time{}, err
			}
			return findFirstWeekday(reference, weekdays, strings.EqualFold(m[2], "before")), nil
		}
	}
	if m := offsetPhrasePattern.FindStringSubmatch(phrase); m != nil {
		delta, err := readOffset(conf.Str(strings.TrimSpace(m[1])))
		if err == nil {
			reference, err := readDatetime(conf.Str(m[3]))
			if err != nil {
				return time.Time{}, err
			}
			if strings.EqualFold(m[2], "before") {
				return reference.Add(-delta), nil
			}
			return reference.Add(delta), nil
		}
	}
	return readDatetime(conf.Str(phrase))
}
