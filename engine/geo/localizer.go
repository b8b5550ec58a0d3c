package geo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Localizer moves points from a world frame into a numerically stable
// local frame. An inactive localizer leaves points untouched and needs no
// delocalization.
type Localizer struct {
	Active       bool
	WorldToLocal mgl64.Mat4
	LocalToWorld mgl64.Mat4
}

// IdentityLocalizer is the inactive localizer.
func IdentityLocalizer() Localizer {
	return Localizer{
		WorldToLocal: mgl64.Ident4(),
		LocalToWorld: mgl64.Ident4(),
	}
}

// ComputeLocalizers derives the localization matrices from the overall
// extent of the data. Only geocentric output needs localizing; the local
// frame is east-north-up at the extent centre.
func ComputeLocalizers(extent Extent, geocentric bool) (Localizer, error) {
	if !geocentric {
		return IdentityLocalizer(), nil
	}
	if !extent.Valid() {
		return IdentityLocalizer(), fmt.Errorf("compute localizers: invalid extent")
	}
	c := extent.Center()
	center, err := extent.SRS.ToGeodetic(mgl64.Vec3{c[0], c[1], 0})
	if err != nil {
		return IdentityLocalizer(), fmt.Errorf("compute localizers: %w", err)
	}
	center[2] = 0

	l2w := LocalToWorldAt(center)
	return Localizer{
		Active:       true,
		LocalToWorld: l2w,
		WorldToLocal: l2w.Inv(),
	}, nil
}

// TransformAndLocalize converts p from srs to geocentric coordinates and
// then into the local frame.
func (l Localizer) TransformAndLocalize(p mgl64.Vec3, srs SpatialReference) (mgl64.Vec3, error) {
	if !l.Active {
		return p, nil
	}
	g, err := srs.ToGeodetic(p)
	if err != nil {
		return p, err
	}
	return mgl64.TransformCoordinate(GeodeticToECEF(g), l.WorldToLocal), nil
}

// Delocalize moves a local point back into geocentric coordinates.
func (l Localizer) Delocalize(p mgl64.Vec3) mgl64.Vec3 {
	if !l.Active {
		return p
	}
	return mgl64.TransformCoordinate(p, l.LocalToWorld)
}
