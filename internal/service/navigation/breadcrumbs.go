// Package navigation derives UI breadcrumbs from a request path.
// Crumbs are recomputed for every path; nothing is cached between calls.
package navigation

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NavCrumb is one link in a navigation trail
type NavCrumb struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Current bool   `json:"current"`
}

// HomeLabel is the label of the leading crumb
const HomeLabel = "Home"

// BreadcrumbsFromPath turns "/deals/<id>/documents" into Home > Deals > <id> > Documents.
// Each crumb's href is the cumulative path up to that segment; the last crumb is current.
// Query strings and fragments are ignored.
func BreadcrumbsFromPath(path string) []NavCrumb {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	crumbs := []NavCrumb{{Label: HomeLabel, Href: "/"}}

	var href strings.Builder
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." {
			continue
		}
		href.WriteString("/")
		href.WriteString(segment)
		crumbs = append(crumbs, NavCrumb{
			Label: segmentLabel(segment),
			Href:  href.String(),
		})
	}

	crumbs[len(crumbs)-1].Current = true
	return crumbs
}

// segmentLabel renders ids as a short prefix and words in title case
func segmentLabel(segment string) string {
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	if id, err := uuid.Parse(segment); err == nil {
		return id.String()[:8]
	}
	words := strings.FieldsFunc(segment, func(r rune) bool { return r == '-' || r == '_' })
	// Casers carry state, so each call gets its own
	return cases.Title(language.English).String(strings.Join(words, " "))
}
