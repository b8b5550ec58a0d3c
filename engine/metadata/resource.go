package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Files the asset manager does not track. */
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Style sheet resource type (styles plus resource libraries). */
	ResourceTypeStyleSheet
	/** @brief Feature collection resource type (footprints with attributes). */
	ResourceTypeFeatures
	/** @brief Application configuration resource type. */
	ResourceTypeConfig
	/** @brief Mesh resource type, the exported output graph. */
	ResourceTypeMesh
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeText:
		return "text"
	case ResourceTypeStyleSheet:
		return "stylesheet"
	case ResourceTypeFeatures:
		return "features"
	case ResourceTypeConfig:
		return "config"
	case ResourceTypeMesh:
		return "mesh"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of the loader which handled this resource. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/** @brief Parameters used when loading a feature collection. */
type FeatureResourceParams struct {
	/** @brief Attribute holding the feature id. Empty uses the GeoJSON id or the feature index. */
	IDAttribute string
}
