package cloudinary

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// UploadedOverlay references an asset already stored under public id key.
func UploadedOverlay(publicID string) string {
	return "image:upload:" + strings.ReplaceAll(publicID, "/", ":")
}

// FetchOverlay makes the renderer fetch rawURL at render time.
func FetchOverlay(rawURL string) string {
	return "fetch:" + base64.URLEncoding.EncodeToString([]byte(rawURL))
}

// TextStyle describes a text overlay font.
type TextStyle struct {
	Family      string
	Size        int
	Weight      string
	Align       string
	LineSpacing int
}

func (s TextStyle) encode() string {
	parts := []string{s.Family, strconv.Itoa(s.Size)}
	if s.Weight != "" && s.Weight != "normal" {
		parts = append(parts, s.Weight)
	}
	if s.Align != "" {
		parts = append(parts, s.Align)
	}
	if s.LineSpacing != 0 {
		parts = append(parts, fmt.Sprintf("line_spacing_%d", s.LineSpacing))
	}
	return strings.Join(parts, "_")
}

// LineBreak is the token that callers embed in text to force a new line.
const LineBreak = "%0A"

// TextOverlay renders the l_text value for text in style. Occurrences of
// LineBreak survive escaping as literal line breaks.
func TextOverlay(style TextStyle, text string) string {
	segments := strings.Split(text, LineBreak)
	for i, seg := range segments {
		segments[i] = EscapeText(seg)
	}
	return "text:" + style.encode() + ":" + strings.Join(segments, LineBreak)
}

// EscapeText applies the double escaping used for overlay text: commas and
// slashes are percent-encoded first, then every byte outside the safe set is
// encoded, so a comma ends up as %252C.
func EscapeText(s string) string {
	s = strings.NewReplacer(",", "%2C", "/", "%2F").Replace(s)
	return smartEscape(s)
}

func smartEscape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '/', c == ':':
		return true
	}
	return false
}
