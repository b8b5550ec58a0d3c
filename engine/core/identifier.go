package core

import (
	"strings"

	"github.com/google/uuid"
)

// featureSeedOffset keeps seeds for low feature ids away from zero so
// resource selection does not collapse onto the first candidate.
const featureSeedOffset int64 = 151

var nameSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/spaghettifunk/extruder"))

// IdentifierFeatureSeed returns the stable selection seed for a feature.
// Repeated calls for the same feature id always return the same seed.
func IdentifierFeatureSeed(fid int64) uint32 {
	return uint32(fid + featureSeedOffset)
}

// IdentifierFromParts derives a deterministic identifier from the given
// name parts. Equal parts always yield the same identifier.
func IdentifierFromParts(parts ...string) string {
	return uuid.NewSHA1(nameSpace, []byte(strings.Join(parts, "/"))).String()
}

// IdentifierNew returns a random identifier.
func IdentifierNew() string {
	return uuid.New().String()
}
