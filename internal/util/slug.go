package util

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var dashRuns = regexp.MustCompile(`-{2,}`)

// Slugify makes a lowercase, dash separated slug from a display name.
func Slugify(s string) string {
	out := strings.ReplaceAll(slug.Make(strings.TrimSpace(s)), "_", "-")
	out = dashRuns.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}
