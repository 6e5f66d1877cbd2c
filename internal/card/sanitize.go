package card

import (
	"strings"

	"github.com/nfrund/goonies/internal/cloudinary"
	"golang.org/x/text/unicode/norm"
)

// truncate trims s, normalizes it to NFC and keeps at most max runes.
func truncate(s string, max int) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// SanitizeName bounds a display name.
func SanitizeName(s string) string {
	return truncate(s, NameMaxRunes)
}

var newlines = strings.NewReplacer("\r\n", cloudinary.LineBreak, "\r", cloudinary.LineBreak, "\n", cloudinary.LineBreak)

// SanitizeBio bounds a bio and turns its newlines into renderer line breaks.
func SanitizeBio(s string) string {
	return newlines.Replace(truncate(s, BioMaxRunes))
}

// SplitTags splits a delimited tag string on "|" or ",".
func SplitTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
}

// SanitizeTags trims the tags, drops empty ones and joins at most TagsMax.
func SanitizeTags(tags []string) string {
	kept := make([]string, 0, TagsMax)
	for _, t := range tags {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		kept = append(kept, norm.NFC.String(t))
		if len(kept) == TagsMax {
			break
		}
	}
	return strings.Join(kept, TagsSeparator)
}
