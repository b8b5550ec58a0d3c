package systems

import (
	"fmt"
	m "math"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/math"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

/** @brief Dihedral angle, in degrees, above which wall edges stay hard. */
const DefaultWallAngleThreshold float64 = 60.0

// HeightCallback computes the extrusion height of a feature. It takes
// precedence over height expressions and fixed heights.
type HeightCallback func(f *features.Feature, cx *FilterContext) float64

/**
 * @brief What a pass needs from its surroundings.
 */
type FilterContext struct {
	/** @brief The extent of the features; its SRS is the input frame. Required. */
	Extent geo.Extent
	/** @brief Output goes to geocentric coordinates through a local frame. */
	Geocentric bool
	/** @brief Styles and resource libraries. Optional. */
	Styles *style.StyleSheet
	/** @brief Receives non-fatal failures. Created when nil. */
	Diagnostics *core.Diagnostics
	/** @brief Receives pass counters. Optional. */
	Metrics *core.MetricsState
}

/**
 * @brief Turns features into extruded walls, roofs and outlines grouped by
 * rendering state.
 */
type ExtrudeGeometryFilter struct {
	style              style.Style
	heightCallback     HeightCallback
	heightOffsetExpr   *style.NumericExpression
	featureNameExpr    *style.StringExpression
	mergeGeometry      bool
	wallAngleThreshDeg float64
	makeBase           bool
}

type FilterOption func(*ExtrudeGeometryFilter)

func WithHeightCallback(cb HeightCallback) FilterOption {
	return func(f *ExtrudeGeometryFilter) { f.heightCallback = cb }
}

func WithHeightOffsetExpr(expr string) FilterOption {
	return func(f *ExtrudeGeometryFilter) {
		if expr != "" {
			f.heightOffsetExpr = style.NewNumericExpression(expr)
		}
	}
}

// WithFeatureNameExpr names every drawable after its feature. Named
// drawables are never consolidated.
func WithFeatureNameExpr(expr string) FilterOption {
	return func(f *ExtrudeGeometryFilter) {
		if expr != "" {
			f.featureNameExpr = style.NewStringExpression(expr)
		}
	}
}

func WithMergeGeometry(merge bool) FilterOption {
	return func(f *ExtrudeGeometryFilter) { f.mergeGeometry = merge }
}

func WithWallAngleThreshold(degrees float64) FilterOption {
	return func(f *ExtrudeGeometryFilter) { f.wallAngleThreshDeg = degrees }
}

// WithBase also caps polygons from below.
func WithBase(base bool) FilterOption {
	return func(f *ExtrudeGeometryFilter) { f.makeBase = base }
}

func NewExtrudeGeometryFilter(s style.Style, opts ...FilterOption) *ExtrudeGeometryFilter {
	f := &ExtrudeGeometryFilter{
		style:              s,
		mergeGeometry:      true,
		wallAngleThreshDeg: DefaultWallAngleThreshold,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *ExtrudeGeometryFilter) Style() style.Style {
	return f.style
}

// SkinStateKey is the rendering state of geometry textured with skin. A nil
// skin maps to the zero key.
func SkinStateKey(skin *style.SkinResource) metadata.StateKey {
	if skin == nil {
		return metadata.StateKey{}
	}
	texture := skin.URL
	if texture == "" {
		texture = skin.Name
	}
	mode := string(skin.TexEnvMode)
	if mode == "" {
		mode = string(style.TexEnvModulate)
	}
	return metadata.StateKey{Texture: texture, TexEnvMode: mode}
}

// pass holds the state of one Push call.
type pass struct {
	cx       *FilterContext
	diags    *core.Diagnostics
	resolved style.Resolved
	wallLib  *style.ResourceLibrary
	roofLib  *style.ResourceLibrary
	srs      geo.SpatialReference
	loc      geo.Localizer
	agg      *Aggregator
	stats    core.PassStats
}

/**
 * @brief Extrudes features and assembles the output graph.
 *
 * Failures confined to a feature or a part are reported to the context's
 * diagnostics and processing continues. A missing extrusion symbol yields
 * an empty group.
 *
 * @param feats The features to extrude. They are not modified.
 * @param cx The pass context. Required.
 * @return The output group, or an error when cx is unusable.
 */
func (f *ExtrudeGeometryFilter) Push(feats []*features.Feature, cx *FilterContext) (*metadata.Group, error) {
	if cx == nil {
		return nil, core.ErrNilFilterContext
	}
	if cx.Extent.SRS == nil {
		return nil, fmt.Errorf("push: extent has no spatial reference: %w", core.ErrInvalidSRS)
	}

	clock := core.NewClock()
	clock.Start()

	p := &pass{
		cx:       cx,
		diags:    cx.Diagnostics,
		resolved: style.Resolve(f.style, cx.Styles),
		srs:      cx.Extent.SRS,
		agg:      NewAggregator(),
	}
	if p.diags == nil {
		p.diags = core.NewDiagnostics(core.DefaultDiagnosticsCapacity)
	}

	if p.resolved.Extrusion == nil {
		p.diags.Warn("extrude", core.ErrMissingExtrusionSymbol, "geometry will be empty")
		return metadata.NewGroup(), nil
	}

	if p.resolved.WallSkin != nil && p.resolved.WallSkin.Library != "" {
		lib, ok := cx.Styles.ResourceLibrary(p.resolved.WallSkin.Library)
		if ok {
			p.wallLib = lib
		} else {
			p.diags.Warn("extrude", core.ErrResourceLibraryNotFound,
				"unable to load resource library '%s'; wall geometry will not be textured", p.resolved.WallSkin.Library)
		}
	}
	if p.resolved.RoofSkin != nil && p.resolved.RoofSkin.Library != "" {
		lib, ok := cx.Styles.ResourceLibrary(p.resolved.RoofSkin.Library)
		if ok {
			p.roofLib = lib
		} else {
			p.diags.Warn("extrude", core.ErrResourceLibraryNotFound,
				"unable to load resource library '%s'; roof geometry will not be textured", p.resolved.RoofSkin.Library)
		}
	}

	loc, err := geo.ComputeLocalizers(cx.Extent, cx.Geocentric)
	if err != nil {
		p.diags.Warn("extrude", err, "output will not be localized")
	}
	p.loc = loc

	for _, feat := range feats {
		if feat == nil || feat.Geometry == nil {
			continue
		}
		f.process(p, feat)
		p.stats.Features++
	}

	if f.mergeGeometry && f.featureNameExpr.Empty() {
		p.agg.Consolidate()
	}

	group := p.agg.Assemble(p.loc)
	core.LogDebug("Sorted geometry into %d groups", group.NumChildren())

	if f.mergeGeometry {
		OptimizeMergeGeometry(group)
	}

	clock.Update()
	p.stats.Triangles = group.TriangleCount()
	p.stats.Drawables = group.DrawableCount()
	p.stats.Elapsed = clock.Elapsed()
	if cx.Metrics != nil {
		cx.Metrics.Record(p.stats)
	}
	return group, nil
}

func (f *ExtrudeGeometryFilter) height(p *pass, feat *features.Feature) float64 {
	if f.heightCallback != nil {
		return f.heightCallback(feat, p.cx)
	}
	if p.resolved.HeightExpr != nil {
		h, err := p.resolved.HeightExpr.Eval(feat)
		if err == nil {
			return h
		}
		p.diags.Warn("extrude", err, "feature %d: using the symbol height", feat.FID)
	}
	return p.resolved.Extrusion.HeightValue()
}

func (f *ExtrudeGeometryFilter) heightOffset(p *pass, feat *features.Feature) float64 {
	if f.heightOffsetExpr == nil {
		return 0
	}
	offset, err := f.heightOffsetExpr.Eval(feat)
	if err != nil {
		p.diags.Warn("extrude", err, "feature %d: no height offset", feat.FID)
		return 0
	}
	return offset
}

func (f *ExtrudeGeometryFilter) skins(p *pass, feat *features.Feature, height, offset float64) (wall, roof *style.SkinResource) {
	seed := core.IdentifierFeatureSeed(feat.FID)

	if p.resolved.WallSkin != nil && p.wallLib != nil {
		query := p.resolved.WallSkin.Query()
		objectHeight := m.Abs(height) - offset
		query.ObjectHeight = &objectHeight
		wall = p.wallLib.Skin(query, seed)
		if wall == nil {
			p.diags.Warn("extrude", nil, "feature %d: no wall skin in library '%s' matches", feat.FID, p.wallLib.Name)
		}
	}
	if p.resolved.RoofSkin != nil && p.roofLib != nil {
		roof = p.roofLib.Skin(p.resolved.RoofSkin.Query(), seed)
		if roof == nil {
			p.diags.Warn("extrude", nil, "feature %d: no roof skin in library '%s' matches", feat.FID, p.roofLib.Name)
		}
	}
	return wall, roof
}

func (f *ExtrudeGeometryFilter) process(p *pass, feat *features.Feature) {
	height := f.height(p, feat)
	offset := f.heightOffset(p, feat)
	wallSkin, roofSkin := f.skins(p, feat, height, offset)
	levels := ComputeLevels(feat.Geometry, height)

	name := ""
	if !f.featureNameExpr.Empty() {
		name = f.featureNameExpr.Eval(feat)
	}

	for _, src := range feat.Geometry.Parts {
		part := src.Clone()
		isPolygon := part.Type == features.PartTypePolygon
		part.Open()
		p.stats.Parts++

		opts := ExtrudeOptions{
			Height:       height,
			HeightOffset: offset,
			Flatten:      p.resolved.Extrusion.FlattenValue(),
			WantRoof:     isPolygon,
			WantBase:     isPolygon && f.makeBase,
			WantOutline:  p.resolved.Outline != nil,
			WallColor:    p.resolved.WallColor().Vec4(),
			RoofColor:    p.resolved.RoofColor().Vec4(),
			OutlineColor: p.resolved.OutlineColor().Vec4(),
			WallSkin:     wallSkin,
			RoofSkin:     roofSkin,
			Levels:       &levels,
			Diagnostics:  p.diags,
		}

		res, ok := ExtrudeGeometry(features.NewGeometry(part), opts, p.srs, p.loc)
		if !ok {
			continue
		}

		res.Walls.SmoothNormals(math.DegToRad(f.wallAngleThreshDeg))
		p.agg.AddDrawable(res.Walls, SkinStateKey(wallSkin), name)

		if res.Roof != nil {
			if err := TessellatePolygons(res.Roof, FacingUp); err != nil {
				p.diags.Warn("extrude", err, "feature %d: roof dropped", feat.FID)
			} else {
				res.Roof.SmoothNormals(m.Pi)
				res.Roof.Dynamic = true
				p.agg.AddDrawable(res.Roof, SkinStateKey(roofSkin), name)
			}
		}

		if res.Base != nil {
			if err := TessellatePolygons(res.Base, FacingDown); err != nil {
				p.diags.Warn("extrude", err, "feature %d: base dropped", feat.FID)
			} else {
				res.Base.SmoothNormals(m.Pi)
				p.agg.AddDrawable(res.Base, metadata.StateKey{}, name)
			}
		}

		if res.Outline != nil {
			p.agg.AddDrawable(res.Outline, metadata.StateKey{}, name)
		}
	}
}
