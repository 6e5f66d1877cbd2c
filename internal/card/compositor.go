// Package card composes member profile cards as Cloudinary render URLs.
package card

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nfrund/goonies/internal/cloudinary"
	"github.com/nfrund/goonies/internal/domain"
)

var (
	// ErrInvalidWidth is returned for a non-integer output width.
	ErrInvalidWidth = errors.New("invalid output width")
	// ErrNoCloudName is returned by Render when no delivery account is set.
	ErrNoCloudName = errors.New("cloudinary cloud name not configured")
)

// Mode distinguishes the ad-hoc preview from a stored profile.
type Mode int

const (
	ModePreview Mode = iota
	ModeProfile
)

// Subject is the sanitized content of one card. It is immutable once built.
type Subject struct {
	mode   Mode
	theme  string
	name   string
	bio    string
	tags   string
	avatar AvatarReference
}

func (s Subject) Mode() Mode              { return s.mode }
func (s Subject) ThemeKey() string        { return s.theme }
func (s Subject) Name() string            { return s.name }
func (s Subject) Bio() string             { return s.bio }
func (s Subject) Tags() string            { return s.tags }
func (s Subject) Avatar() AvatarReference { return s.avatar }

// PreviewInput is the raw query of a preview request. Tags wins over
// DelimitedTags when it holds at least one non-blank value.
type PreviewInput struct {
	Theme         string
	Name          string
	Bio           string
	Tags          []string
	DelimitedTags string
	Avatar        string
}

// NewPreviewSubject sanitizes preview input.
func NewPreviewSubject(in PreviewInput) Subject {
	tags := in.Tags
	if !hasTag(tags) {
		tags = SplitTags(in.DelimitedTags)
	}
	return Subject{
		mode:   ModePreview,
		theme:  in.Theme,
		name:   SanitizeName(in.Name),
		bio:    SanitizeBio(in.Bio),
		tags:   SanitizeTags(tags),
		avatar: SelectAvatarSource(in.Avatar),
	}
}

func hasTag(tags []string) bool {
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// NewProfileSubject builds the card of a stored user. themeOverride, when
// set, replaces the user's own theme. The display name falls back to the
// username.
func NewProfileSubject(u *domain.User, themeOverride string) Subject {
	theme := themeOverride
	if theme == "" {
		theme = u.CardTheme
	}
	name := SanitizeName(u.DisplayName)
	if name == "" {
		name = SanitizeName(u.Username)
	}
	return Subject{
		mode:   ModeProfile,
		theme:  theme,
		name:   name,
		bio:    SanitizeBio(u.Bio),
		tags:   SanitizeTags(u.Titles),
		avatar: SelectAvatarSource(u.AvatarURL),
	}
}

// Options tune avatar framing and output size.
type Options struct {
	Gravity string
	Zoom    float64
	Debug   bool
	// Width scales the output when positive.
	Width int
}

// DefaultOptions frames faces at neutral zoom with no resize.
func DefaultOptions() Options {
	return Options{Gravity: DefaultGravity, Zoom: DefaultZoom}
}

var gravityPattern = regexp.MustCompile(`^[a-z0-9_:]+$`)

// ParseOptions reads g, z, debug and w. Unusable g and z values fall back to
// the defaults; a w that is not an integer is an error.
func ParseOptions(q url.Values) (Options, error) {
	o := DefaultOptions()

	if g := strings.TrimSpace(q.Get("g")); g != "" && gravityPattern.MatchString(g) {
		o.Gravity = g
	}
	if z := strings.TrimSpace(q.Get("z")); z != "" {
		if v, err := strconv.ParseFloat(z, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			o.Zoom = v
		}
	}
	switch q.Get("debug") {
	case "1", "true":
		o.Debug = true
	}
	if w := strings.TrimSpace(q.Get("w")); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return o, fmt.Errorf("%w: %q", ErrInvalidWidth, w)
		}
		o.Width = v
	}
	return o, nil
}

// RenderRequest is the full description of one render.
type RenderRequest struct {
	Template TemplateBinding
	Layers   []LayerSpec
	// Output is nil when no resize was requested.
	Output cloudinary.Step
}

// Steps returns the URL components in order.
func (r RenderRequest) Steps() []cloudinary.Step {
	var p Pipeline
	for _, l := range r.Layers {
		p = p.Append(l)
	}
	steps := p.Steps()
	if r.Output != nil {
		steps = append(steps, r.Output)
	}
	return steps
}

// BuildRenderURL renders r as an unsigned delivery URL. It has no side
// effects.
func BuildRenderURL(cloudName string, r RenderRequest) string {
	return cloudinary.BuildURL(cloudName, r.Template.TemplateID, r.Template.Version, r.Steps())
}

// Compositor turns subjects into render URLs.
type Compositor struct {
	cloudName string
	themes    *ThemeResolver
}

// New creates a compositor delivering from cloudName.
func New(cloudName string, themes *ThemeResolver) *Compositor {
	return &Compositor{cloudName: cloudName, themes: themes}
}

// Compose builds the layer stack for s: avatar, name, bio, tags, then the
// optional output resize.
func (c *Compositor) Compose(ctx context.Context, s Subject, o Options) RenderRequest {
	if o.Gravity == "" {
		o.Gravity = DefaultGravity
	}

	p := Pipeline{}.Append(avatarLayer(s.avatar, o))
	if s.name != "" || s.mode == ModeProfile {
		p = p.Append(nameLayer(s.name))
	}
	if s.bio != "" {
		p = p.Append(bioLayer(s.bio))
	}
	if s.tags != "" {
		p = p.Append(tagsLayer(s.tags))
	}

	req := RenderRequest{
		Template: c.themes.Resolve(ctx, s.theme),
		Layers:   p.Layers(),
	}
	if o.Width > 0 {
		req.Output = cloudinary.Step{cloudinary.Width(o.Width), cloudinary.Crop("scale")}
	}
	return req
}

// Render composes s and returns its URL along with the request it encodes.
// No URL is produced without a cloud name.
func (c *Compositor) Render(ctx context.Context, s Subject, o Options) (string, RenderRequest, error) {
	if c.cloudName == "" {
		return "", RenderRequest{}, ErrNoCloudName
	}
	req := c.Compose(ctx, s, o)
	return BuildRenderURL(c.cloudName, req), req, nil
}
