package card

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	hostedAssetHost = "res.cloudinary.com"
	uploadSegment   = "/image/upload/"
)

var versionComponent = regexp.MustCompile(`^v\d+$`)

// ResolveInternalKey extracts the public id from a hosted asset URL such as
// https://res.cloudinary.com/demo/image/upload/v123/folder/name.jpg, which
// yields "folder/name". Any other input yields ok == false.
func ResolveInternalKey(raw string) (key string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || !strings.Contains(u.Hostname(), hostedAssetHost) {
		return "", false
	}
	_, after, found := strings.Cut(u.Path, uploadSegment)
	if !found || after == "" {
		return "", false
	}

	parts := strings.Split(after, "/")
	if versionComponent.MatchString(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return "", false
	}
	last := parts[len(parts)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		parts[len(parts)-1] = last[:dot]
	}

	key = strings.Join(parts, "/")
	if key == "" {
		return "", false
	}
	return key, true
}
