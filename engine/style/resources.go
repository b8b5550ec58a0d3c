package style

import (
	"strings"
)

// TexEnvMode controls how a texture combines with vertex colours.
type TexEnvMode string

const (
	TexEnvModulate TexEnvMode = "modulate"
	TexEnvDecal    TexEnvMode = "decal"
	TexEnvReplace  TexEnvMode = "replace"
)

const (
	/** @brief World width of a skin image when unset. */
	DefaultSkinImageWidth float64 = 10.0
	/** @brief World height of a skin image when unset. */
	DefaultSkinImageHeight float64 = 3.0
)

/**
 * @brief A texture tile that can be applied to walls or roofs.
 */
type SkinResource struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
	/** @brief Width of one tile in world units. */
	ImageWidth *float64 `toml:"image_width"`
	/** @brief Height of one tile in world units. */
	ImageHeight *float64 `toml:"image_height"`
	/** @brief Smallest object height this skin suits. */
	MinObjectHeight *float64 `toml:"min_object_height"`
	/** @brief Largest object height this skin suits. */
	MaxObjectHeight *float64 `toml:"max_object_height"`
	/** @brief Whether the tile repeats vertically at its natural height. */
	Tiled      bool       `toml:"tiled"`
	Tags       []string   `toml:"tags"`
	TexEnvMode TexEnvMode `toml:"tex_env_mode"`
}

// Width is the tile width, or the default when unset or not positive.
func (r *SkinResource) Width() float64 {
	if r.ImageWidth == nil || *r.ImageWidth <= 0 {
		return DefaultSkinImageWidth
	}
	return *r.ImageWidth
}

// Height is the tile height, or the default when unset or not positive.
func (r *SkinResource) Height() float64 {
	if r.ImageHeight == nil || *r.ImageHeight <= 0 {
		return DefaultSkinImageHeight
	}
	return *r.ImageHeight
}

func (r *SkinResource) IsDecal() bool {
	return strings.EqualFold(string(r.TexEnvMode), string(TexEnvDecal))
}

func (r *SkinResource) hasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (r *SkinResource) matches(query *SkinSymbol) bool {
	if query == nil {
		return true
	}
	if query.ObjectHeight != nil {
		h := *query.ObjectHeight
		if r.MinObjectHeight != nil && h < *r.MinObjectHeight {
			return false
		}
		if r.MaxObjectHeight != nil && h > *r.MaxObjectHeight {
			return false
		}
	}
	for _, tag := range query.Tags {
		if !r.hasTag(tag) {
			return false
		}
	}
	return true
}

/**
 * @brief A named collection of skins.
 */
type ResourceLibrary struct {
	Name  string          `toml:"-"`
	Skins []*SkinResource `toml:"skins"`
}

// MatchingSkins returns the skins satisfying the query, in library order.
func (l *ResourceLibrary) MatchingSkins(query *SkinSymbol) []*SkinResource {
	var out []*SkinResource
	for _, s := range l.Skins {
		if s.matches(query) {
			out = append(out, s)
		}
	}
	return out
}

// Skin picks one matching skin. The same seed always picks the same skin,
// so a feature is skinned identically on every pass.
func (l *ResourceLibrary) Skin(query *SkinSymbol, seed uint32) *SkinResource {
	candidates := l.MatchingSkins(query)
	if len(candidates) == 0 {
		return nil
	}
	return candidates[seed%uint32(len(candidates))]
}
