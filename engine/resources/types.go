package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a resource the engine knows about. */
	ResourceTypeNone ResourceType = iota
	/** @brief Recorded animation (bone tracks), stored as YAML. */
	ResourceTypeAnimation
	/** @brief Skeleton rig definition, stored as TOML. */
	ResourceTypeRig
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeAnimation:
		return "animation"
	case ResourceTypeRig:
		return "rig"
	default:
		return "none"
	}
}

// Extension is the file suffix of the resource type.
func (t ResourceType) Extension() string {
	switch t {
	case ResourceTypeAnimation:
		return ".anim.yaml"
	case ResourceTypeRig:
		return ".rig.toml"
	default:
		return ""
	}
}

/** @brief The format version written in animation files. */
const AnimationFormatVersion = 1

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of the resource. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource file in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief The content of an animation file. Tracks are bone-major: one
 * track per bone, one sample per frame.
 */
type AnimationResourceData struct {
	Version    int                 `yaml:"version"`
	Name       string              `yaml:"name"`
	Skeleton   string              `yaml:"skeleton"`
	FrameCount int                 `yaml:"frame_count"`
	Times      []float32           `yaml:"times,flow"`
	Tracks     []BoneTrackResource `yaml:"tracks"`
}

type BoneTrackResource struct {
	Bone  string     `yaml:"bone"`
	Scale [3]float32 `yaml:"scale,flow"`
	// x, y, z per frame
	Positions [][3]float32 `yaml:"positions,flow"`
	// x, y, z, w per frame
	Rotations [][4]float32 `yaml:"rotations,flow"`
}

// Track returns the track of the named bone.
func (a *AnimationResourceData) Track(bone string) (*BoneTrackResource, bool) {
	for i := range a.Tracks {
		if a.Tracks[i].Bone == bone {
			return &a.Tracks[i], true
		}
	}
	return nil, false
}
