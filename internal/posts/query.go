package posts

import (
	"sort"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultPageSize matches the number of posts the listing loads per step.
const DefaultPageSize = 10

// Filter narrows a catalog. Empty fields do not filter.
type Filter struct {
	Tag  string
	Date string
}

// Apply returns the posts matching every set field, keeping catalog order.
func (f Filter) Apply(posts []interfaces.Post, cal Calendar) []interfaces.Post {
	out := make([]interfaces.Post, 0, len(posts))
	for _, post := range posts {
		if f.Tag != "" && !post.HasTag(f.Tag) {
			continue
		}
		if f.Date != "" {
			day, ok := cal.Day(post.Date)
			if !ok || day.Key() != f.Date {
				continue
			}
		}
		out = append(out, post)
	}
	return out
}

// FilterByTag keeps posts whose tags contain tag.
func FilterByTag(posts []interfaces.Post, tag string) []interfaces.Post {
	return Filter{Tag: tag}.Apply(posts, LocalCalendar)
}

// FilterByDate keeps posts whose date falls on the YYYY-MM-DD day key.
func FilterByDate(posts []interfaces.Post, dayKey string, cal Calendar) []interfaces.Post {
	return Filter{Date: dayKey}.Apply(posts, cal)
}

// Years lists the distinct years present in the catalog, newest first.
func Years(posts []interfaces.Post, cal Calendar) []string {
	seen := map[string]struct{}{}
	var years []string
	for _, post := range posts {
		day, ok := cal.Day(post.Date)
		if !ok {
			continue
		}
		if _, dup := seen[day.Year]; dup {
			continue
		}
		seen[day.Year] = struct{}{}
		years = append(years, day.Year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// PostsInYear keeps posts dated in year.
func PostsInYear(posts []interfaces.Post, year string, cal Calendar) []interfaces.Post {
	out := make([]interfaces.Post, 0)
	for _, post := range posts {
		if day, ok := cal.Day(post.Date); ok && day.Year == year {
			out = append(out, post)
		}
	}
	return out
}

// MonthGroup holds the posts of one two digit month.
type MonthGroup struct {
	Month string            `json:"month"`
	Posts []interfaces.Post `json:"posts"`
}

// GroupByMonth partitions posts by month, months descending. Callers
// normally pass the output of PostsInYear.
func GroupByMonth(posts []interfaces.Post, cal Calendar) []MonthGroup {
	index := map[string]int{}
	var groups []MonthGroup
	for _, post := range posts {
		day, ok := cal.Day(post.Date)
		if !ok {
			continue
		}
		i, exists := index[day.Month]
		if !exists {
			i = len(groups)
			index[day.Month] = i
			groups = append(groups, MonthGroup{Month: day.Month})
		}
		groups[i].Posts = append(groups[i].Posts, post)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Month > groups[j].Month
	})
	return groups
}

// DayGroup holds the posts published on one day.
type DayGroup struct {
	Day   string            `json:"day"`
	Posts []interfaces.Post `json:"posts"`
}

// ArchiveMonth is a month node in the archive tree.
type ArchiveMonth struct {
	Month string     `json:"month"`
	Count int        `json:"count"`
	Days  []DayGroup `json:"days"`
}

// DayKeys returns the distinct days of the month, newest first.
func (m ArchiveMonth) DayKeys() []string {
	keys := make([]string, len(m.Days))
	for i, day := range m.Days {
		keys[i] = day.Day
	}
	return keys
}

// ArchiveYear is a year node in the archive tree.
type ArchiveYear struct {
	Year   string         `json:"year"`
	Count  int            `json:"count"`
	Months []ArchiveMonth `json:"months"`
}

// Archive is the year, month, day navigation tree. Posts whose date cannot
// be read land in Undated so the tree plus Undated covers the catalog.
type Archive struct {
	Years   []ArchiveYear     `json:"years"`
	Undated []interfaces.Post `json:"undated,omitempty"`
}

// BuildArchive groups posts by year, month and day, every level newest
// first. Posts inside a day keep catalog order.
func BuildArchive(posts []interfaces.Post, cal Calendar) Archive {
	type monthKey struct{ year, month string }
	type dayKey struct{ year, month, day string }

	var archive Archive
	years := map[string]*ArchiveYear{}
	months := map[monthKey]*ArchiveMonth{}
	days := map[dayKey][]interfaces.Post{}
	var yearOrder []string
	monthOrder := map[string][]string{}
	dayOrder := map[monthKey][]string{}

	for _, post := range posts {
		day, ok := cal.Day(post.Date)
		if !ok {
			archive.Undated = append(archive.Undated, post)
			continue
		}
		y, exists := years[day.Year]
		if !exists {
			y = &ArchiveYear{Year: day.Year}
			years[day.Year] = y
			yearOrder = append(yearOrder, day.Year)
		}
		y.Count++

		mk := monthKey{day.Year, day.Month}
		m, exists := months[mk]
		if !exists {
			m = &ArchiveMonth{Month: day.Month}
			months[mk] = m
			monthOrder[day.Year] = append(monthOrder[day.Year], day.Month)
		}
		m.Count++

		dk := dayKey{day.Year, day.Month, day.Day}
		if _, exists := days[dk]; !exists {
			dayOrder[mk] = append(dayOrder[mk], day.Day)
		}
		days[dk] = append(days[dk], post)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(yearOrder)))
	for _, year := range yearOrder {
		y := years[year]
		monthKeys := monthOrder[year]
		sort.Sort(sort.Reverse(sort.StringSlice(monthKeys)))
		for _, month := range monthKeys {
			mk := monthKey{year, month}
			m := months[mk]
			dayKeys := dayOrder[mk]
			sort.Sort(sort.Reverse(sort.StringSlice(dayKeys)))
			for _, d := range dayKeys {
				m.Days = append(m.Days, DayGroup{Day: d, Posts: days[dayKey{year, month, d}]})
			}
			y.Months = append(y.Months, *m)
		}
		archive.Years = append(archive.Years, *y)
	}
	return archive
}

// TagCount is one entry of the tag cloud.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts the posts carrying each tag, highest count first. Ties
// keep first appearance order and a tag repeated within one post counts
// once.
func TagCounts(posts []interfaces.Post) []TagCount {
	index := map[string]int{}
	var counts []TagCount
	for _, post := range posts {
		inPost := map[string]struct{}{}
		for _, tag := range post.Tags {
			if _, dup := inPost[tag]; dup {
				continue
			}
			inPost[tag] = struct{}{}
			i, exists := index[tag]
			if !exists {
				i = len(counts)
				index[tag] = i
				counts = append(counts, TagCount{Tag: tag})
			}
			counts[i].Count++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// Page is one window over a filtered catalog.
type Page struct {
	Posts      []interfaces.Post `json:"posts"`
	Total      int               `json:"total"`
	Offset     int               `json:"offset"`
	HasMore    bool              `json:"has_more"`
	NextOffset int               `json:"next_offset,omitempty"`
}

// Paginate slices posts from offset. A non positive limit uses
// DefaultPageSize.
func Paginate(posts []interfaces.Post, offset, limit int) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	total := len(posts)
	if offset > total {
		offset = total
	}
	if limit > total-offset {
		limit = total - offset
	}
	end := offset + limit
	page := Page{
		Posts:  append([]interfaces.Post{}, posts[offset:end]...),
		Total:  total,
		Offset: offset,
	}
	if end < total {
		page.HasMore = true
		page.NextOffset = end
	}
	return page
}
