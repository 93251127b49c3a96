package application

import (
	"net/url"
	"strings"
)

// Permalink returns the detail page URL of a post under origin.
func Permalink(origin, postID string) string {
	return strings.TrimRight(origin, "/") + "/p/" + url.PathEscape(postID)
}
