package featureflag

type Flag string

const (
	// Resolves volumes with geom.ResolveWorldScaled, so that a scale held by
	// a volume transform resizes the tested box.
	FlagScaledVolumeTransforms Flag = "SCALED_VOLUME_TRANSFORMS"

	// Rejects the creation of a volume whose tag is already registered in the
	// same world.
	FlagUniqueVolumeTags Flag = "UNIQUE_VOLUME_TAGS"
)
