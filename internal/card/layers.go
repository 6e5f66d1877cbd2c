package card

import "github.com/nfrund/goonies/internal/cloudinary"

// LayerKind names the visual element a layer draws.
type LayerKind string

const (
	LayerAvatar LayerKind = "avatar"
	LayerName   LayerKind = "name"
	LayerBio    LayerKind = "bio"
	LayerTags   LayerKind = "tags"
)

// LayerSpec is one overlay and the placement step that commits it.
type LayerSpec struct {
	Kind    LayerKind
	Text    string
	Content cloudinary.Step
	Apply   cloudinary.Step
}

// Pipeline is an ordered, append-only list of layers. Later layers stack
// above earlier ones. Append never mutates the receiver.
type Pipeline struct {
	layers []LayerSpec
}

// Append returns a new pipeline with l at the end.
func (p Pipeline) Append(l LayerSpec) Pipeline {
	next := make([]LayerSpec, len(p.layers), len(p.layers)+1)
	copy(next, p.layers)
	return Pipeline{layers: append(next, l)}
}

// Layers returns a copy of the layers in stacking order.
func (p Pipeline) Layers() []LayerSpec {
	return append([]LayerSpec(nil), p.layers...)
}

// Steps flattens the pipeline into URL components, each overlay followed by
// its placement step.
func (p Pipeline) Steps() []cloudinary.Step {
	steps := make([]cloudinary.Step, 0, 2*len(p.layers))
	for _, l := range p.layers {
		steps = append(steps, l.Content, l.Apply)
	}
	return steps
}

func avatarLayer(ref AvatarReference, o Options) LayerSpec {
	content := cloudinary.Step{
		cloudinary.Overlay(ref.Overlay()),
		cloudinary.Width(ArtWidth),
		cloudinary.Height(ArtHeight),
		cloudinary.Crop("fill"),
		cloudinary.Gravity(o.Gravity),
		cloudinary.Radius(ArtRadius),
	}
	if o.Zoom != 0 && o.Zoom != DefaultZoom {
		content = content.With(cloudinary.Zoom(o.Zoom))
	}
	if o.Debug {
		content = content.With(cloudinary.Border(DebugBorder))
	}
	return LayerSpec{
		Kind:    LayerAvatar,
		Content: content,
		Apply:   cloudinary.LayerApply(cloudinary.X(ArtX), cloudinary.Y(ArtY)),
	}
}

func textLayer(kind LayerKind, text string, style cloudinary.TextStyle, color string, width int, apply cloudinary.Step) LayerSpec {
	return LayerSpec{
		Kind: kind,
		Text: text,
		Content: cloudinary.Step{
			cloudinary.Overlay(cloudinary.TextOverlay(style, text)),
			cloudinary.Color(color),
			cloudinary.Width(width),
			cloudinary.Crop("fit"),
		},
		Apply: apply,
	}
}

func nameLayer(name string) LayerSpec {
	return textLayer(LayerName, name,
		cloudinary.TextStyle{Family: FontFamily, Size: NameSize, Weight: "bold", Align: "center"},
		NameColor, NameWidth,
		cloudinary.LayerApply(cloudinary.Gravity("north"), cloudinary.Y(NameY)))
}

func bioLayer(bio string) LayerSpec {
	return textLayer(LayerBio, bio,
		cloudinary.TextStyle{Family: FontFamily, Size: BioSize, LineSpacing: BioLineSpacing},
		BioColor, BioWidth,
		cloudinary.LayerApply(cloudinary.Gravity("north_west"), cloudinary.X(BioX), cloudinary.Y(BioY)))
}

func tagsLayer(tags string) LayerSpec {
	return textLayer(LayerTags, tags,
		cloudinary.TextStyle{Family: FontFamily, Size: TagsSize},
		TagsColor, TagsWidth,
		cloudinary.LayerApply(cloudinary.Gravity("north_west"), cloudinary.X(TagsX), cloudinary.Y(TagsY)))
}
