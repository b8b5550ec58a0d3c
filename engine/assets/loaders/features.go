package loaders

import (
	"fmt"
	m "math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	geojson "github.com/paulmach/go.geojson"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/metadata"
)

// FeatureLoader reads GeoJSON feature collections. Polygons become polygon
// parts (outer ring plus holes), line strings become open lines and
// geometry collections are flattened. Points carry nothing to extrude and
// are skipped.
type FeatureLoader struct{}

func (fl *FeatureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p, _ := params.(*metadata.FeatureResourceParams)
	feats, err := DecodeFeatures(data, p)
	if err != nil {
		return nil, fmt.Errorf("feature collection %s: %w", path, err)
	}

	return &metadata.Resource{
		Type:     metadata.ResourceTypeFeatures,
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     feats,
	}, nil
}

func (fl *FeatureLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}

func DecodeFeatures(data []byte, params *metadata.FeatureResourceParams) ([]*features.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	idAttribute := ""
	if params != nil {
		idAttribute = params.IDAttribute
	}

	feats := make([]*features.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			core.LogDebug("feature %d has no geometry", i)
			continue
		}
		geom := features.NewGeometry()
		if err := appendParts(geom, f.Geometry); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if len(geom.Parts) == 0 {
			core.LogDebug("feature %d (%s) has nothing to extrude", i, f.Geometry.Type)
			continue
		}

		feat := features.NewFeature(featureID(f, int64(i), idAttribute), geom)
		for k, v := range f.Properties {
			feat.Set(k, v)
		}
		feats = append(feats, feat)
	}
	return feats, nil
}

func featureID(f *geojson.Feature, index int64, idAttribute string) int64 {
	if idAttribute != "" {
		if id, ok := toID(f.Properties[idAttribute]); ok {
			return id
		}
	}
	if id, ok := toID(f.ID); ok {
		return id
	}
	return index
}

func toID(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t == m.Trunc(t) {
			return int64(t), true
		}
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

func appendParts(geom *features.Geometry, g *geojson.Geometry) error {
	switch g.Type {
	case geojson.GeometryPoint, geojson.GeometryMultiPoint:
	case geojson.GeometryLineString:
		line, err := toPoints(g.LineString)
		if err != nil {
			return err
		}
		geom.Parts = append(geom.Parts, features.NewLine(line...))
	case geojson.GeometryMultiLineString:
		for _, ls := range g.MultiLineString {
			line, err := toPoints(ls)
			if err != nil {
				return err
			}
			geom.Parts = append(geom.Parts, features.NewLine(line...))
		}
	case geojson.GeometryPolygon:
		part, err := toPolygon(g.Polygon)
		if err != nil {
			return err
		}
		if part != nil {
			geom.Parts = append(geom.Parts, part)
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			part, err := toPolygon(poly)
			if err != nil {
				return err
			}
			if part != nil {
				geom.Parts = append(geom.Parts, part)
			}
		}
	case geojson.GeometryCollection:
		for _, child := range g.Geometries {
			if err := appendParts(geom, child); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported geometry type %q", g.Type)
	}
	return nil
}

func toPolygon(rings [][][]float64) (*features.Part, error) {
	if len(rings) == 0 {
		return nil, nil
	}
	outer, err := toPoints(rings[0])
	if err != nil {
		return nil, err
	}
	holes := make([][]mgl64.Vec3, 0, len(rings)-1)
	for _, r := range rings[1:] {
		hole, err := toPoints(r)
		if err != nil {
			return nil, err
		}
		holes = append(holes, hole)
	}
	return features.NewPolygon(outer, holes...), nil
}

func toPoints(coords [][]float64) ([]mgl64.Vec3, error) {
	points := make([]mgl64.Vec3, 0, len(coords))
	for _, c := range coords {
		switch len(c) {
		case 2:
			points = append(points, mgl64.Vec3{c[0], c[1], 0})
		case 3, 4:
			points = append(points, mgl64.Vec3{c[0], c[1], c[2]})
		default:
			return nil, fmt.Errorf("position with %d coordinates", len(c))
		}
	}
	return points, nil
}
