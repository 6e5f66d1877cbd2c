package card

// Card geometry and typography, in template design pixels.
const (
	ArtX      = 0
	ArtY      = -115
	ArtWidth  = 600
	ArtHeight = 450
	ArtRadius = 24

	DefaultGravity = "auto:faces"
	DefaultZoom    = 1.0
	DebugBorder    = "2px_solid_lime"

	FontFamily = "Arial"

	NameY        = 88
	NameWidth    = 560
	NameSize     = 56
	NameColor    = "#111111"
	NameMaxRunes = 30

	BioX           = 100
	BioY           = 670
	BioWidth       = 560
	BioSize        = 28
	BioLineSpacing = 6
	BioColor       = "#333333"
	BioMaxRunes    = 400

	TagsX         = 100
	TagsY         = 870
	TagsWidth     = 560
	TagsSize      = 30
	TagsColor     = "#111111"
	TagsSeparator = " • "
	TagsMax       = 3

	// PlaceholderURL is fetched when no usable avatar exists.
	PlaceholderURL = "https://dummyimage.com/800x600/ddd/555.png&text=Avatar"
)
