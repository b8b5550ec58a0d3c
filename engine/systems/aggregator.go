package systems

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/metadata"
)

/**
 * @brief Buckets drawables by rendering state for one pass. It is not safe
 * for concurrent use.
 */
type Aggregator struct {
	geodes map[metadata.StateKey]*metadata.Geode
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		geodes: make(map[metadata.StateKey]*metadata.Geode),
	}
}

// AddDrawable records d in the bucket for key, creating the bucket on first
// use. The zero key is a valid bucket.
func (a *Aggregator) AddDrawable(d *metadata.Geometry, key metadata.StateKey, name string) {
	geode, ok := a.geodes[key]
	if !ok {
		geode = metadata.NewGeode(key)
		geode.Name = core.IdentifierFromParts("geode", key.Texture, key.TexEnvMode)
		a.geodes[key] = geode
	}
	if name != "" {
		d.Name = name
	}
	geode.AddDrawable(d)
}

func (a *Aggregator) Len() int {
	return len(a.geodes)
}

// Keys returns the bucket keys, the zero key first and the rest sorted.
func (a *Aggregator) Keys() []metadata.StateKey {
	keys := make([]metadata.StateKey, 0, len(a.geodes))
	for k := range a.geodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func (a *Aggregator) Geode(key metadata.StateKey) (*metadata.Geode, bool) {
	g, ok := a.geodes[key]
	return g, ok
}

// Consolidate merges the drawables of each bucket into as few batches as
// their vertex attributes allow, each batch holding one triangle set and
// one line set.
func (a *Aggregator) Consolidate() {
	for _, key := range a.Keys() {
		geode := a.geodes[key]
		geode.Drawables = mergeDrawables(geode.Drawables, false)
		for _, d := range geode.Drawables {
			d.Consolidate()
		}
	}
}

// Assemble moves every bucket under a new group and empties the
// aggregator. When loc is active the group carries its local-to-world
// matrix.
func (a *Aggregator) Assemble(loc geo.Localizer) *metadata.Group {
	group := metadata.NewGroup()
	if loc.Active {
		l2w := loc.LocalToWorld
		group.Matrix = &l2w
	}
	for _, key := range a.Keys() {
		group.AddGeode(a.geodes[key])
	}
	a.geodes = make(map[metadata.StateKey]*metadata.Geode)
	return group
}

// OptimizeMergeGeometry merges compatible drawables within every geode of
// the graph and joins their primitive sets. Dynamic drawables are left as
// they are.
func OptimizeMergeGeometry(group *metadata.Group) {
	group.Walk(func(geode *metadata.Geode, _ mgl64.Mat4) {
		geode.Drawables = mergeDrawables(geode.Drawables, true)
		for _, d := range geode.Drawables {
			if !d.Dynamic {
				d.Consolidate()
			}
		}
	})
}

func mergeDrawables(drawables []*metadata.Geometry, skipDynamic bool) []*metadata.Geometry {
	var merged []*metadata.Geometry
	for _, d := range drawables {
		if skipDynamic && d.Dynamic {
			merged = append(merged, d)
			continue
		}
		var target *metadata.Geometry
		for _, m := range merged {
			if (!skipDynamic || !m.Dynamic) && m.Compatible(d) {
				target = m
				break
			}
		}
		if target == nil {
			merged = append(merged, d)
			continue
		}
		target.Append(d)
	}
	return merged
}
