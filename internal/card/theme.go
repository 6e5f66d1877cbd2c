package card

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/goonies/internal/cloudinary"
	"github.com/nfrund/goonies/internal/metrics"
	"golang.org/x/text/cases"
)

// Theme selects the base card template.
type Theme string

const (
	ThemeYellow Theme = "yellow"
	ThemeBlue   Theme = "blue"
	ThemeGreen  Theme = "green"
	ThemeRed    Theme = "red"

	DefaultTheme = ThemeYellow
)

var templates = map[Theme]string{
	ThemeYellow: "base-yellow-v1",
	ThemeBlue:   "base-blue-v1",
	ThemeGreen:  "base-green-v1",
	ThemeRed:    "base-red-v1",
}

// Themes lists the known themes in display order.
func Themes() []Theme {
	return []Theme{ThemeYellow, ThemeBlue, ThemeGreen, ThemeRed}
}

// IsTheme reports whether key names a known theme, ignoring case.
func IsTheme(key string) bool {
	_, ok := templates[foldTheme(key)]
	return ok
}

// ParseTheme maps key to a theme. Unknown or empty keys give DefaultTheme.
func ParseTheme(key string) Theme {
	t := foldTheme(key)
	if _, ok := templates[t]; ok {
		return t
	}
	return DefaultTheme
}

func foldTheme(key string) Theme {
	return Theme(cases.Fold().String(strings.TrimSpace(key)))
}

// TemplateID returns the public id of the theme's base image.
func (t Theme) TemplateID() string {
	if id, ok := templates[t]; ok {
		return id
	}
	return templates[DefaultTheme]
}

// TemplateBinding is a resolved template. Version 0 means no cache-buster.
type TemplateBinding struct {
	Theme      Theme
	TemplateID string
	Version    int
}

// HasVersion reports whether a version was resolved.
func (b TemplateBinding) HasVersion() bool {
	return b.Version > 0
}

// ThemeResolver binds themes to templates and looks up their versions on a
// best-effort basis.
type ThemeResolver struct {
	lookup  cloudinary.VersionLookup
	timeout time.Duration
	metrics *metrics.Card
}

// NewThemeResolver creates a resolver. A nil lookup disables versioning.
func NewThemeResolver(lookup cloudinary.VersionLookup, timeout time.Duration, m *metrics.Card) *ThemeResolver {
	return &ThemeResolver{lookup: lookup, timeout: timeout, metrics: m}
}

// Resolve never fails: a lookup error, timeout or panic leaves Version at 0.
func (r *ThemeResolver) Resolve(ctx context.Context, key string) TemplateBinding {
	theme := ParseTheme(key)
	b := TemplateBinding{Theme: theme, TemplateID: theme.TemplateID()}
	if r == nil || r.lookup == nil {
		return b
	}

	v, err := r.version(ctx, b.TemplateID)
	if err != nil {
		r.metrics.VersionLookup("error")
		slog.DebugContext(ctx, "Template version lookup failed", "template", b.TemplateID, "error", err)
		return b
	}
	r.metrics.VersionLookup("ok")
	b.Version = v
	return b
}

func (r *ThemeResolver) version(ctx context.Context, templateID string) (v int, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			v, err = 0, fmt.Errorf("version lookup panicked: %v", p)
		}
	}()
	return r.lookup.AssetVersion(ctx, templateID)
}
