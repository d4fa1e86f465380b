package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a display name into a URL slug.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug appends a millisecond suffix to the slug. Product names
// are not unique, so their slugs need the disambiguator; category
// names are unique and use the plain form.
func uniqueSlug(name string) string {
	return fmt.Sprintf("%s-%d", slugify(name), time.Now().UnixMilli())
}
