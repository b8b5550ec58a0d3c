package style

// Altitude clamping modes.
const (
	ClampNone     string = "none"
	ClampTerrain  string = "terrain"
	ClampRelative string = "relative"
	ClampAbsolute string = "absolute"
)

const (
	/** @brief Extrusion height used when a symbol does not set one. */
	DefaultExtrusionHeight float64 = 10.0
	/** @brief Whether roofs are flattened when a symbol does not say. */
	DefaultFlatten bool = true
)

/**
 * @brief Describes how footprints are raised into volumes.
 */
type ExtrusionSymbol struct {
	/** @brief Fixed extrusion height. Negative heights extrude downward. */
	Height *float64 `toml:"height"`
	/** @brief Numeric expression evaluated per feature for the height. */
	HeightExpression string `toml:"height_expr"`
	/** @brief Flatten all roof points of a feature onto one plane. */
	Flatten *bool `toml:"flatten"`
	/** @brief Name of the style holding wall symbols. */
	WallStyle string `toml:"wall_style"`
	/** @brief Name of the style holding roof symbols. */
	RoofStyle string `toml:"roof_style"`
}

func (s *ExtrusionSymbol) HeightValue() float64 {
	if s.Height == nil {
		return DefaultExtrusionHeight
	}
	return *s.Height
}

func (s *ExtrusionSymbol) FlattenValue() bool {
	if s.Flatten == nil {
		return DefaultFlatten
	}
	return *s.Flatten
}

/**
 * @brief Selects a texture skin from a resource library.
 */
type SkinSymbol struct {
	/** @brief The resource library to pick skins from. */
	Library string `toml:"library"`
	/** @brief Every tag must be carried by a matching skin. */
	Tags []string `toml:"tags"`
	/** @brief The height of the object being skinned. Set per query, never read from a sheet. */
	ObjectHeight *float64 `toml:"-"`
}

// Query returns a copy of the symbol suitable for a single skin lookup.
func (s *SkinSymbol) Query() *SkinSymbol {
	q := &SkinSymbol{
		Library: s.Library,
		Tags:    append([]string(nil), s.Tags...),
	}
	if s.ObjectHeight != nil {
		h := *s.ObjectHeight
		q.ObjectHeight = &h
	}
	return q
}

// PolygonSymbol fills faces. A nil Fill is unset and renders white.
type PolygonSymbol struct {
	Fill *Color `toml:"fill"`
}

type LineSymbol struct {
	Stroke *Color  `toml:"stroke"`
	Width  float64 `toml:"width"`
}

type AltitudeSymbol struct {
	Clamping string `toml:"clamping"`
}

/**
 * @brief A named set of symbols.
 */
type Style struct {
	Name      string           `toml:"-"`
	Extrusion *ExtrusionSymbol `toml:"extrusion"`
	Skin      *SkinSymbol      `toml:"skin"`
	Polygon   *PolygonSymbol   `toml:"polygon"`
	Line      *LineSymbol      `toml:"line"`
	Altitude  *AltitudeSymbol  `toml:"altitude"`
}
