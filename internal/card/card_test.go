package card

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/goonies/internal/cloudinary"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	version int
	err     error
	panics  bool
	block   bool
	calls   []string
}

func (f *fakeLookup) AssetVersion(ctx context.Context, publicID string) (int, error) {
	f.calls = append(f.calls, publicID)
	if f.panics {
		panic("renderer exploded")
	}
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.version, f.err
}

func newCompositor(lookup cloudinary.VersionLookup) *Compositor {
	return New("demo", NewThemeResolver(lookup, time.Second, nil))
}

func layerKinds(req RenderRequest) []LayerKind {
	kinds := make([]LayerKind, 0, len(req.Layers))
	for _, l := range req.Layers {
		kinds = append(kinds, l.Kind)
	}
	return kinds
}

func findLayer(req RenderRequest, kind LayerKind) (LayerSpec, bool) {
	for _, l := range req.Layers {
		if l.Kind == kind {
			return l, true
		}
	}
	return LayerSpec{}, false
}

func TestResolveInternalKey(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v123/folder/name.jpg", "folder/name", true},
		{"https://res.cloudinary.com/demo/image/upload/folder/name.png", "folder/name", true},
		{"https://res.cloudinary.com/demo/image/upload/v9/goonies/x.jpg", "goonies/x", true},
		{"https://res.cloudinary.com/demo/image/upload/name", "name", true},
		{"https://res.cloudinary.com/demo/image/upload/v1/a.b/c.d.webp", "a.b/c.d", true},
		{"https://res.cloudinary.com/demo/image/upload/v1/a.b/c", "a.b/c", true},
		// Hosted URLs of any account resolve to a key of the configured one.
		{"https://res.cloudinary.com/someoneelse/image/upload/v1/pic.jpg", "pic", true},
		{"https://res.cloudinary.com/demo/video/upload/v1/clip.mp4", "", false},
		{"https://res.cloudinary.com/demo/image/upload/", "", false},
		{"https://example.com/demo/image/upload/v1/folder/name.jpg", "", false},
		{"not a url", "", false},
		{"/image/upload/folder/name.jpg", "", false},
		{"", "", false},
		{"http://[::1", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveInternalKey(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestSelectAvatarSource(t *testing.T) {
	for _, raw := range []string{"", "   ", "undefined", "null", "about:blank"} {
		assert.Equal(t, AvatarPlaceholder, SelectAvatarSource(raw).Kind(), "%q", raw)
	}

	internal := SelectAvatarSource("https://res.cloudinary.com/demo/image/upload/v9/goonies/avatars/x.jpg")
	assert.Equal(t, AvatarInternal, internal.Kind())
	assert.Equal(t, "goonies/avatars/x", internal.Key())
	assert.Equal(t, "image:upload:goonies:avatars:x", internal.Overlay())

	remote := SelectAvatarSource(" https://img.example/me.png ")
	assert.Equal(t, AvatarRemote, remote.Kind())
	assert.Equal(t, "https://img.example/me.png", remote.URL())
	assert.Equal(t, cloudinary.FetchOverlay("https://img.example/me.png"), remote.Overlay())

	for _, unsafe := range []string{"javascript:alert(1)", "file:///etc/passwd", "data:image/png;base64,xx", "ftp://a/b", "relative/path.png"} {
		ref := SelectAvatarSource(unsafe)
		assert.Equal(t, AvatarPlaceholder, ref.Kind(), unsafe)
		assert.Equal(t, cloudinary.FetchOverlay(PlaceholderURL), ref.Overlay())
	}
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Mikey", SanitizeName("  Mikey  "))
	assert.Equal(t, strings.Repeat("a", 30), SanitizeName(strings.Repeat("a", 45)))
	long := strings.Repeat("é", 40)
	assert.Equal(t, strings.Repeat("é", 30), SanitizeName(long), "truncation counts runes")
	assert.Equal(t, "", SanitizeName("   "))
}

func TestSanitizeBio(t *testing.T) {
	bio := SanitizeBio(strings.Repeat("b", 500))
	assert.Len(t, bio, BioMaxRunes)

	assert.Equal(t, "one%0Atwo%0Athree%0Afour", SanitizeBio("one\ntwo\r\nthree\rfour"))
	assert.NotContains(t, SanitizeBio("a\nb"), "\n")
}

func TestSanitizeTags(t *testing.T) {
	assert.Equal(t, "a • b • c", SanitizeTags([]string{"a", "b", "c", "d", "e"}))
	assert.Equal(t, "a • c", SanitizeTags([]string{" a ", "", "  ", "c"}))
	assert.Equal(t, "", SanitizeTags(nil))
	assert.Equal(t, "x • y • z", SanitizeTags(SplitTags("x|y,z|w")))
	assert.Equal(t, []string{"x", " y"}, SplitTags("x|| y"))
}

func TestParseTheme(t *testing.T) {
	assert.Equal(t, ThemeBlue, ParseTheme("BLUE"))
	assert.Equal(t, ThemeRed, ParseTheme(" red "))
	assert.Equal(t, DefaultTheme, ParseTheme("purple"))
	assert.Equal(t, DefaultTheme, ParseTheme(""))
	assert.Equal(t, ThemeGreen, ParseTheme("GrEeN"))
	assert.Equal(t, "base-yellow-v1", ParseTheme("purple").TemplateID())
	assert.Equal(t, "base-green-v1", ThemeGreen.TemplateID())
	assert.True(t, IsTheme("Green"))
	assert.False(t, IsTheme("purple"))
	assert.Len(t, Themes(), 4)
}

func TestThemeResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("version found", func(t *testing.T) {
		lookup := &fakeLookup{version: 17}
		b := NewThemeResolver(lookup, time.Second, nil).Resolve(ctx, "blue")
		assert.Equal(t, TemplateBinding{Theme: ThemeBlue, TemplateID: "base-blue-v1", Version: 17}, b)
		assert.Equal(t, []string{"base-blue-v1"}, lookup.calls)
	})

	t.Run("lookup error is absorbed", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.NewCard(reg)
		b := NewThemeResolver(&fakeLookup{err: errors.New("404")}, time.Second, m).Resolve(ctx, "green")
		assert.False(t, b.HasVersion())
		assert.Equal(t, "base-green-v1", b.TemplateID)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionLookups.WithLabelValues("error")))
	})

	t.Run("panic is absorbed", func(t *testing.T) {
		b := NewThemeResolver(&fakeLookup{panics: true}, time.Second, nil).Resolve(ctx, "red")
		assert.False(t, b.HasVersion())
	})

	t.Run("timeout bounds the lookup", func(t *testing.T) {
		start := time.Now()
		b := NewThemeResolver(&fakeLookup{block: true}, 20*time.Millisecond, nil).Resolve(ctx, "red")
		assert.False(t, b.HasVersion())
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("nil lookup", func(t *testing.T) {
		b := NewThemeResolver(nil, time.Second, nil).Resolve(ctx, "purple")
		assert.Equal(t, TemplateBinding{Theme: ThemeYellow, TemplateID: "base-yellow-v1"}, b)
	})
}

func TestParseOptions(t *testing.T) {
	o, err := ParseOptions(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), o)

	o, err = ParseOptions(url.Values{"g": {"auto:subject"}, "z": {"1.5"}, "debug": {"true"}, "w": {"300"}})
	require.NoError(t, err)
	assert.Equal(t, Options{Gravity: "auto:subject", Zoom: 1.5, Debug: true, Width: 300}, o)

	o, err = ParseOptions(url.Values{"g": {"north/../x"}, "z": {"abc"}, "debug": {"yes"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), o, "unusable values fall back to defaults")

	_, err = ParseOptions(url.Values{"w": {"wide"}})
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestCompose_PreviewNameOmittedWhenEmpty(t *testing.T) {
	c := newCompositor(nil)
	ctx := context.Background()

	req := c.Compose(ctx, NewPreviewSubject(PreviewInput{Name: "   "}), DefaultOptions())
	assert.Equal(t, []LayerKind{LayerAvatar}, layerKinds(req))

	req = c.Compose(ctx, NewPreviewSubject(PreviewInput{Name: "Data", Bio: "Gadgets", Tags: []string{"inventor"}}), DefaultOptions())
	assert.Equal(t, []LayerKind{LayerAvatar, LayerName, LayerBio, LayerTags}, layerKinds(req))
}

func TestCompose_ProfileAlwaysHasName(t *testing.T) {
	c := newCompositor(nil)
	user := &domain.User{Username: "chunk", DisplayName: ""}

	req := c.Compose(context.Background(), NewProfileSubject(user, ""), DefaultOptions())
	assert.Equal(t, []LayerKind{LayerAvatar, LayerName}, layerKinds(req))
	name, _ := findLayer(req, LayerName)
	assert.Equal(t, "chunk", name.Text)
}

func TestCompose_AvatarOptions(t *testing.T) {
	c := newCompositor(nil)
	s := NewPreviewSubject(PreviewInput{})

	req := c.Compose(context.Background(), s, Options{Gravity: "center", Zoom: 1.3, Debug: true})
	avatar := req.Layers[0]
	assert.Equal(t, LayerAvatar, avatar.Kind)
	g, _ := avatar.Content.Get("g")
	assert.Equal(t, "center", g)
	z, _ := avatar.Content.Get("z")
	assert.Equal(t, "1.3", z)
	bo, _ := avatar.Content.Get("bo")
	assert.Equal(t, DebugBorder, bo)
	assert.Equal(t, "fl_layer_apply,x_0,y_-115", avatar.Apply.Encode())

	req = c.Compose(context.Background(), s, Options{})
	_, hasZoom := req.Layers[0].Content.Get("z")
	assert.False(t, hasZoom, "neutral zoom is omitted")
	g, _ = req.Layers[0].Content.Get("g")
	assert.Equal(t, DefaultGravity, g)
}

func TestCompose_OutputResize(t *testing.T) {
	c := newCompositor(nil)
	s := NewPreviewSubject(PreviewInput{Name: "Andy"})
	ctx := context.Background()

	req := c.Compose(ctx, s, Options{Gravity: DefaultGravity, Zoom: 1, Width: 300})
	steps := req.Steps()
	assert.Equal(t, "c_scale,w_300", steps[len(steps)-1].Encode())

	count := 0
	for _, st := range steps {
		if v, ok := st.Get("c"); ok && v == "scale" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	for _, w := range []int{0, -5} {
		req = c.Compose(ctx, s, Options{Width: w})
		assert.Nil(t, req.Output)
		assert.Len(t, req.Steps(), 4)
	}
}

func TestRender_PreviewURL(t *testing.T) {
	c := newCompositor(&fakeLookup{version: 1712})
	s := NewPreviewSubject(PreviewInput{Theme: "blue", Name: "Mikey"})

	got, _, err := c.Render(context.Background(), s, DefaultOptions())
	require.NoError(t, err)

	want := "https://res.cloudinary.com/demo/image/upload/" +
		"c_fill,g_auto:faces,h_450,l_" + cloudinary.FetchOverlay(PlaceholderURL) + ",r_24,w_600/" +
		"fl_layer_apply,x_0,y_-115/" +
		"c_fit,co_rgb:111111,l_text:Arial_56_bold_center:Mikey,w_560/" +
		"fl_layer_apply,g_north,y_88/" +
		"v1712/base-blue-v1"
	assert.Equal(t, want, got)
}

func TestRender_RequiresCloudName(t *testing.T) {
	lookup := &fakeLookup{version: 7}
	c := New("", NewThemeResolver(lookup, time.Second, nil))

	got, req, err := c.Render(context.Background(), NewPreviewSubject(PreviewInput{Name: "x"}), DefaultOptions())
	assert.ErrorIs(t, err, ErrNoCloudName)
	assert.Empty(t, got)
	assert.Empty(t, req.Layers)
	assert.Empty(t, lookup.calls)
}

func TestNewPreviewSubject_Tags(t *testing.T) {
	tests := []struct {
		name string
		in   PreviewInput
		want string
	}{
		{"repeated tag wins", PreviewInput{Tags: []string{"x", "y"}, DelimitedTags: "a|b"}, "x • y"},
		{"delimited only", PreviewInput{DelimitedTags: "a|b"}, "a • b"},
		{"blank tag falls back", PreviewInput{Tags: []string{""}, DelimitedTags: "a|b"}, "a • b"},
		{"blank tags fall back", PreviewInput{Tags: []string{" ", ""}, DelimitedTags: "a,b"}, "a • b"},
		{"nothing", PreviewInput{Tags: []string{""}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPreviewSubject(tt.in).Tags())
		})
	}
}

func TestRender_PreviewInternalAvatar(t *testing.T) {
	c := newCompositor(nil)
	s := NewPreviewSubject(PreviewInput{Avatar: "https://res.cloudinary.com/demo/image/upload/v9/goonies/x.jpg"})

	got, req, err := c.Render(context.Background(), s, DefaultOptions())
	require.NoError(t, err)
	overlay, _ := req.Layers[0].Content.Get("l")
	assert.Equal(t, "image:upload:goonies:x", overlay)
	assert.NotContains(t, overlay, "fetch:")
	assert.Contains(t, got, "l_image:upload:goonies:x")
	assert.True(t, strings.HasSuffix(got, "/base-yellow-v1"))
}

func TestRender_ProfileEndToEnd(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("metadata API unavailable")}
	c := newCompositor(lookup)
	user := &domain.User{
		Username:    "brand",
		DisplayName: "Brand",
		CardTheme:   "blue",
		Titles:      []string{"a", "b", "c", "d"},
		Bio:         strings.Repeat("x", 450),
		AvatarURL:   "https://img.example/brand.png",
	}

	got, req, err := c.Render(context.Background(), NewProfileSubject(user, ""), DefaultOptions())
	require.NoError(t, err)

	bio, ok := findLayer(req, LayerBio)
	require.True(t, ok)
	assert.Len(t, bio.Text, 400)

	tags, ok := findLayer(req, LayerTags)
	require.True(t, ok)
	assert.Equal(t, "a • b • c", tags.Text)

	assert.Equal(t, "base-blue-v1", req.Template.TemplateID)
	assert.False(t, req.Template.HasVersion())
	assert.Equal(t, []string{"base-blue-v1"}, lookup.calls)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "res.cloudinary.com", u.Host)
	assert.True(t, strings.HasSuffix(got, "/base-blue-v1"))
	assert.NotContains(t, got, "/v0/")
	assert.NotContains(t, got, "s--", "urls are unsigned")
}

func TestRender_ProfileThemeOverride(t *testing.T) {
	c := newCompositor(nil)
	user := &domain.User{Username: "stef", CardTheme: "red"}

	_, req, err := c.Render(context.Background(), NewProfileSubject(user, "green"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "base-green-v1", req.Template.TemplateID)

	_, req, err = c.Render(context.Background(), NewProfileSubject(user, ""), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "base-red-v1", req.Template.TemplateID)
}

func TestPipeline_AppendIsImmutable(t *testing.T) {
	base := Pipeline{}.Append(nameLayer("a"))
	one := base.Append(bioLayer("b"))
	two := base.Append(tagsLayer("c"))

	assert.Len(t, base.Layers(), 1)
	assert.Equal(t, LayerBio, one.Layers()[1].Kind)
	assert.Equal(t, LayerTags, two.Layers()[1].Kind)

	steps := one.Steps()
	require.Len(t, steps, 4)
	for i := 1; i < len(steps); i += 2 {
		flag, _ := steps[i].Get("fl")
		assert.Equal(t, "layer_apply", flag, "every overlay is followed by its placement step")
	}
}
