package model

// DefaultPageSize matches the "all courses" page of the catalog.
const DefaultPageSize = 30

// CourseList is an ordered view over courses with lookup by code and
// fixed-size pages.  The zero value is an empty list.
type CourseList struct {
	courses  []Course
	index    map[string]int
	pageSize int
}

// NewCourseList keeps the given order.  A later course with a code that
// was already seen replaces the earlier one in place.
func NewCourseList(courses []Course, pageSize int) CourseList {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	l := CourseList{index: make(map[string]int, len(courses)), pageSize: pageSize}
	for _, c := range courses {
		if i, ok := l.index[c.Code]; ok {
			l.courses[i] = c
			continue
		}
		l.index[c.Code] = len(l.courses)
		l.courses = append(l.courses, c)
	}
	return l
}

// Len is the number of courses.
func (l CourseList) Len() int { return len(l.courses) }

// PageSize is the fixed page size.
func (l CourseList) PageSize() int {
	if l.pageSize <= 0 {
		return DefaultPageSize
	}
	return l.pageSize
}

// All returns the courses in order.  The slice must not be modified.
func (l CourseList) All() []Course { return l.courses }

// Codes returns the course codes in order.
func (l CourseList) Codes() []string {
	out := make([]string, len(l.courses))
	for i, c := range l.courses {
		out[i] = c.Code
	}
	return out
}

// Lookup finds a course by exact canonical code.
func (l CourseList) Lookup(code string) (Course, bool) {
	i, ok := l.index[code]
	if !ok {
		return Course{}, false
	}
	return l.courses[i], true
}

// Page returns the 1-based page n.  Pages outside the list are empty.
func (l CourseList) Page(n int) []Course {
	size := l.PageSize()
	if n < 1 || n-1 >= l.Pages() {
		return nil
	}
	start := (n - 1) * size
	end := start + size
	if end > len(l.courses) {
		end = len(l.courses)
	}
	return l.courses[start:end]
}

// Pages is the number of non-empty pages.
func (l CourseList) Pages() int {
	size := l.PageSize()
	return (len(l.courses) + size - 1) / size
}
