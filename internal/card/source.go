package card

import (
	"net/url"
	"strings"

	"github.com/nfrund/goonies/internal/cloudinary"
)

// AvatarKind tags the variant held by an AvatarReference.
type AvatarKind int

const (
	AvatarPlaceholder AvatarKind = iota
	AvatarInternal
	AvatarRemote
)

func (k AvatarKind) String() string {
	switch k {
	case AvatarInternal:
		return "internal"
	case AvatarRemote:
		return "remote"
	default:
		return "placeholder"
	}
}

// AvatarReference says where the renderer gets the avatar image. The zero
// value is the placeholder.
type AvatarReference struct {
	kind AvatarKind
	key  string
	url  string
}

// InternalArtifact references a prior upload by public id.
func InternalArtifact(key string) AvatarReference {
	return AvatarReference{kind: AvatarInternal, key: key}
}

// RemoteFetch references an external URL. Only absolute http(s) URLs are
// accepted; anything else yields the placeholder and ok == false.
func RemoteFetch(raw string) (ref AvatarReference, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Placeholder(), false
	}
	return AvatarReference{kind: AvatarRemote, url: u.String()}, true
}

// Placeholder is the fixed fallback image.
func Placeholder() AvatarReference {
	return AvatarReference{}
}

func (a AvatarReference) Kind() AvatarKind { return a.kind }
func (a AvatarReference) Key() string      { return a.key }
func (a AvatarReference) URL() string      { return a.url }

// Overlay renders the l_ value for the avatar layer.
func (a AvatarReference) Overlay() string {
	switch a.kind {
	case AvatarInternal:
		return cloudinary.UploadedOverlay(a.key)
	case AvatarRemote:
		return cloudinary.FetchOverlay(a.url)
	default:
		return cloudinary.FetchOverlay(PlaceholderURL)
	}
}

// absentAvatar lists values browsers and forms send for "no image".
var absentAvatar = map[string]bool{"": true, "undefined": true, "null": true, "about:blank": true}

// SelectAvatarSource picks the avatar variant for raw input.
func SelectAvatarSource(raw string) AvatarReference {
	s := strings.TrimSpace(raw)
	if absentAvatar[s] {
		return Placeholder()
	}
	if key, ok := ResolveInternalKey(s); ok {
		return InternalArtifact(key)
	}
	ref, _ := RemoteFetch(s)
	return ref
}
