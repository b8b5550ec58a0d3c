package style

// MaxHeightAboveTerrainExpr extrudes clamped features from the terrain up to
// their absolute height.
const MaxHeightAboveTerrainExpr string = "0-[__max_hat]"

/**
 * @brief The symbols an extrusion pass works from, resolved once per pass.
 */
type Resolved struct {
	Extrusion   *ExtrusionSymbol
	HeightExpr  *NumericExpression
	WallSkin    *SkinSymbol
	RoofSkin    *SkinSymbol
	WallPolygon *PolygonSymbol
	RoofPolygon *PolygonSymbol
	Outline     *LineSymbol
}

// Resolve gathers the wall, roof and outline symbols for s, looking up the
// wall and roof styles in sheet. The style level skin and polygon symbols
// fill in whatever the wall and roof styles leave unset.
func Resolve(s Style, sheet *StyleSheet) Resolved {
	var r Resolved

	if s.Extrusion != nil {
		r.Extrusion = s.Extrusion

		if s.Extrusion.HeightExpression != "" {
			r.HeightExpr = NewNumericExpression(s.Extrusion.HeightExpression)
		} else if s.Altitude != nil {
			switch s.Altitude.Clamping {
			case ClampAbsolute, ClampTerrain:
				r.HeightExpr = NewNumericExpression(MaxHeightAboveTerrainExpr)
			}
		}

		if s.Extrusion.WallStyle != "" {
			if wall, ok := sheet.Style(s.Extrusion.WallStyle); ok {
				r.WallSkin = wall.Skin
				r.WallPolygon = wall.Polygon
			}
		}
		if s.Extrusion.RoofStyle != "" {
			if roof, ok := sheet.Style(s.Extrusion.RoofStyle); ok {
				r.RoofSkin = roof.Skin
				r.RoofPolygon = roof.Polygon
			}
		}

		r.Outline = s.Line
	}

	if s.Skin != nil {
		if r.WallSkin == nil {
			r.WallSkin = s.Skin
		}
		if r.RoofSkin == nil {
			r.RoofSkin = s.Skin
		}
	}

	if s.Polygon != nil {
		if r.WallPolygon == nil {
			r.WallPolygon = s.Polygon
		}
		if r.RoofPolygon == nil {
			r.RoofPolygon = s.Polygon
		}
	}

	return r
}

func (r Resolved) WallColor() Color {
	if r.WallPolygon == nil || r.WallPolygon.Fill == nil {
		return White
	}
	return *r.WallPolygon.Fill
}

func (r Resolved) RoofColor() Color {
	if r.RoofPolygon == nil || r.RoofPolygon.Fill == nil {
		return White
	}
	return *r.RoofPolygon.Fill
}

func (r Resolved) OutlineColor() Color {
	if r.Outline == nil || r.Outline.Stroke == nil {
		return White
	}
	return *r.Outline.Stroke
}
