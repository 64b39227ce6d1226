package posts

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var dateOnlyPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// Day is a calendar day split into zero padded parts.
type Day struct {
	Year  string
	Month string
	Day   string
}

// Key renders the day as YYYY-MM-DD.
func (d Day) Key() string {
	return d.Year + "-" + d.Month + "-" + d.Day
}

// Calendar truncates post dates to calendar days in Location. A nil
// Location means time.Local at call time.
type Calendar struct {
	Location *time.Location
}

// LocalCalendar uses the process local time zone.
var LocalCalendar = Calendar{}

// Day parses value into a calendar day. Plain YYYY-MM-DD values are taken
// as written; timestamps are parsed loosely and converted to Location.
func (c Calendar) Day(value string) (Day, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Day{}, false
	}
	if match := dateOnlyPattern.FindStringSubmatch(value); match != nil {
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return Day{}, false
		}
		return Day{Year: match[1], Month: match[2], Day: match[3]}, true
	}

	loc := c.location()
	parsed, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return Day{}, false
	}
	local := parsed.In(loc)
	return Day{
		Year:  local.Format("2006"),
		Month: local.Format("01"),
		Day:   local.Format("02"),
	}, true
}

func (c Calendar) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}
