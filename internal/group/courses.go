package group

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// courseSource adapts a course list to fuzzy.Source, matching on "CODE Name".
type courseSource []*Course

func (s courseSource) String(i int) string { return s[i].Code + " " + s[i].Name }
func (s courseSource) Len() int            { return len(s) }

// FilterCourses returns up to limit courses matching query, best match first.
// Substring hits on code or name rank ahead of fuzzy-only hits. A blank query
// returns nothing.
func FilterCourses(courses []*Course, query string, limit int) []*Course {
	query = strings.TrimSpace(query)
	if query == "" || len(courses) == 0 {
		return nil
	}

	lower := strings.ToLower(query)
	var out []*Course
	seen := make(map[int]bool)
	for i, c := range courses {
		if strings.Contains(strings.ToLower(c.Code), lower) || strings.Contains(strings.ToLower(c.Name), lower) {
			out = append(out, c)
			seen[i] = true
		}
	}

	for _, m := range fuzzy.FindFrom(query, courseSource(courses)) {
		if seen[m.Index] {
			continue
		}
		out = append(out, courses[m.Index])
		seen[m.Index] = true
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
