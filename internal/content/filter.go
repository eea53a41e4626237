package content

import "strings"

// AllCategories is the category filter value that matches every lecture.
const AllCategories = "All"

type LectureFilter struct {
	Category string
	Query    string
}

// FilterLectures keeps lectures in the chosen category whose title contains
// the query, ignoring case. Input order is preserved.
func FilterLectures(list []Lecture, f LectureFilter) []Lecture {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Lecture, 0, len(list))
	for _, l := range list {
		if f.Category != "" && f.Category != AllCategories && string(l.Category) != f.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(l.Title), q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

type NoteFilter struct {
	Query    string
	Standard string
	Medium   string
}

// FilterNotes matches the query against title or subject; empty standard and
// medium (or "All") match everything.
func FilterNotes(list []Note, f NoteFilter) []Note {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Note, 0, len(list))
	for _, n := range list {
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Subject), q) {
			continue
		}
		if f.Standard != "" && f.Standard != AllCategories && n.Standard != f.Standard {
			continue
		}
		if f.Medium != "" && f.Medium != AllCategories && string(n.Medium) != f.Medium {
			continue
		}
		out = append(out, n)
	}
	return out
}
