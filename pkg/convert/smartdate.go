package convert

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// errNoMatch signals that a phrase parser did not match, so the next
// parser should be tried. A parser that matches but finds bad content
// returns a ConversionError instead.
var errNoMatch = errors.New("no match")

// SmartDate is the "date" converter. It accepts ISO dates, phrases like
// "3 days before 2021-10-05", and phrases like "first monday, friday
// after 2021-09-10". A datetime input is truncated to its date; a date
// input passes through.
func SmartDate(raw conf.Value) (conf.Value, error) {
	switch x := raw.(type) {
	case conf.DateTime:
		return conf.Date{Time: truncateToDate(x.Time)}, nil
	case conf.Date:
		return x, nil
	case conf.String:
		t, err := parsePhrase(x.Value)
		if err != nil {
			if errors.Is(err, errNoMatch) {
				return nil, errorf("cannot parse into date: %q", x.Value)
			}
			return nil, err
		}
		return conf.Date{Time: truncateToDate(t)}, nil
	default:
		return nil, errorf("cannot convert type %q to date", conf.TypeName(raw))
	}
}

// SmartDateTime is the "datetime" converter. It accepts the same phrases
// as SmartDate plus times, e.g. "3 days after 2021-10-05 23:59:00" or a
// trailing "at HH:MM:SS". A date input is an error to avoid silently
// inventing a time of day.
func SmartDateTime(raw conf.Value) (conf.Value, error) {
	switch x := raw.(type) {
	case conf.DateTime:
		return x, nil
	case conf.Date:
		return nil, errorf("cannot implicitly convert date %q into datetime", x.String())
	case conf.String:
		t, err := parsePhrase(x.Value)
		if err != nil {
			if errors.Is(err, errNoMatch) {
				return nil, errorf("cannot parse into datetime: %q", x.Value)
			}
			return nil, err
		}
		return conf.DateTime{Time: t}, nil
	default:
		return nil, errorf("cannot convert type %q to datetime", conf.TypeName(raw))
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// combineTime replaces the time-of-day of t.
func combineTime(t time.Time, hour, min, sec int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, min, sec, 0, t.Location())
}

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoMatch
}

// parsePhrase tries each date phrase form in turn.
func parsePhrase(s string) (time.Time, error) {
	if t, err := parseISO(s); err == nil {
		return t, nil
	}
	for _, parse := range []func(string) (time.Time, error){
		parseExplicitWithAt,
		parseOffsetPhrase,
		parseFirstWeekdayPhrase,
	} {
		t, err := parse(s)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, errNoMatch) {
			return time.Time{}, err
		}
	}
	return time.Time{}, errNoMatch
}

var atTimePattern = regexp.MustCompile(`(?i) at (\d{2}):(\d{2}):(\d{2})$`)

// splitAtTime removes a trailing "at HH:MM:SS" clause. The second return
// is nil when there was no clause. A clause with an invalid time is a
// ConversionError, not a mismatch.
func splitAtTime(s string) (string, *[3]int, error) {
	m := atTimePattern.FindStringSubmatch(s)
	if m == nil {
		return s, nil, nil
	}
	hour, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	if hour > 23 || min > 59 || sec > 59 {
		return "", nil, errorf("invalid time: %q", s)
	}
	return atTimePattern.ReplaceAllString(s, ""), &[3]int{hour, min, sec}, nil
}

// parseExplicitWithAt parses "<ISO date> at HH:MM:SS".
func parseExplicitWithAt(s string) (time.Time, error) {
	rest, at, err := splitAtTime(s)
	if err != nil {
		return time.Time{}, err
	}
	t, err := parseISO(rest)
	if err != nil {
		return time.Time{}, errNoMatch
	}
	if at != nil {
		t = combineTime(t, at[0], at[1], at[2])
	}
	return t, nil
}

var offsetPattern = regexp.MustCompile(`(?i)^(\d+) (day|hour)s? (after|before) (.*)$`)

// parseOffsetPhrase parses "<n> day(s)|hour(s) before|after <ISO>".
func parseOffsetPhrase(s string) (time.Time, error) {
	rest, at, err := splitAtTime(s)
	if err != nil {
		return time.Time{}, err
	}
	m := offsetPattern.FindStringSubmatch(rest)
	if m == nil {
		return time.Time{}, errNoMatch
	}
	n, _ := strconv.Atoi(m[1])
	if strings.EqualFold(m[3], "before") {
		n = -n
	}
	ref, err := parseISO(m[4])
	if err != nil {
		return time.Time{}, errNoMatch
	}
	var t time.Time
	if strings.EqualFold(m[2], "hour") {
		t = ref.Add(time.Duration(n) * time.Hour)
	} else {
		t = ref.AddDate(0, 0, n)
	}
	if at != nil {
		t = combineTime(t, at[0], at[1], at[2])
	}
	return t, nil
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var firstDayPattern = regexp.MustCompile(`(?i)^first ([\w ]+) (after|before) (.*)$`)

// parseFirstWeekdayPhrase parses "first <weekday>[, <weekday>...]
// before|after <ISO>". The result is the nearest listed weekday strictly
// before or after the reference.
func parseFirstWeekdayPhrase(s string) (time.Time, error) {
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, " or ", " ")

	rest, at, err := splitAtTime(s)
	if err != nil {
		return time.Time{}, err
	}
	m := firstDayPattern.FindStringSubmatch(rest)
	if m == nil {
		return time.Time{}, errNoMatch
	}
	wanted := make(map[time.Weekday]bool)
	for _, name := range strings.Fields(m[1]) {
		day, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return time.Time{}, errNoMatch
		}
		wanted[day] = true
	}
	ref, err := parseISO(m[3])
	if err != nil {
		return time.Time{}, errNoMatch
	}
	step := 1
	if strings.EqualFold(m[2], "before") {
		step = -1
	}
	t := ref.AddDate(0, 0, step)
	for !wanted[t.Weekday()] {
		t = t.AddDate(0, 0, step)
	}
	if at != nil {
		t = combineTime(t, at[0], at[1], at[2])
	}
	return t, nil
}
