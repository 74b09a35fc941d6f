package skeleton

import "errors"

// Load-time and playback errors. Load-time failures (malformed keyframes,
// unresolvable bone parents) are reported once when the skeleton is built and
// never during steady-state ticking; playback failures are surfaced
// synchronously to the caller without changing any state.
var (
	// ErrAnimationNotFound is returned when an unknown clip name is requested.
	ErrAnimationNotFound = errors.New("animation not found")

	// ErrInvalidSeekPosition is returned when a requested start frame lies at
	// or beyond the clip's declared duration.
	ErrInvalidSeekPosition = errors.New("invalid seek position")

	// ErrMalformedKeyframeData is returned when a keyframe carries a null or
	// negative duration.
	ErrMalformedKeyframeData = errors.New("malformed keyframe data")

	// ErrMissingParentReference is returned when a bone names a parent that
	// does not exist in the armature.
	ErrMissingParentReference = errors.New("missing parent reference")

	// ErrCyclicBoneGraph is returned when the parent references of the bone
	// tree form a cycle.
	ErrCyclicBoneGraph = errors.New("cyclic bone graph")
)
