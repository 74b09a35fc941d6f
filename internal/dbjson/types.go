// Package dbjson provides data structures and parsers for DragonBones
// skeleton definition files. A DragonBones project exports a `<name>_ske.json`
// file containing the bone hierarchy, the slot/skin bindings and the keyframe
// tracks of every animation clip.
package dbjson

// SkeletonJSON is the root structure of a `_ske.json` file.
type SkeletonJSON struct {
	// FrameRate is the authoring frame rate of the project, typically 24 or 30.
	// Keyframe durations are expressed in frames at this rate.
	FrameRate int `json:"frameRate"`

	// Armatures is the list of armatures in the project. Runtime playback
	// uses the first armature; additional armatures are ignored.
	Armatures []Armature `json:"armature"`
}

// Armature holds one bone hierarchy together with its slots, skins and
// animation clips.
type Armature struct {
	Name       string      `json:"name"`
	Bones      []Bone      `json:"bone"`
	Slots      []Slot      `json:"slot"`
	Skins      []Skin      `json:"skin"`
	Animations []Animation `json:"animation"`
}

// Bone describes one node of the hierarchy. Parent is the name of the parent
// bone; an empty Parent means the bone hangs directly off the skeleton root.
type Bone struct {
	Name      string     `json:"name"`
	Parent    string     `json:"parent,omitempty"`
	Transform *Transform `json:"transform,omitempty"`
}

// Transform is the static bind-pose offset of a bone. All fields are optional
// and use pointer types to distinguish "absent" from zero.
type Transform struct {
	// X and Y are the bind position offset in pixels
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// ScaleX and ScaleY are the bind scale factors (1.0 = normal size)
	ScaleX *float64 `json:"scX,omitempty"`
	ScaleY *float64 `json:"scY,omitempty"`

	// SkewX is the bind angle in degrees. Negative exported values wrap to
	// the equivalent positive angle at load time (skX -30 means 330).
	SkewX *float64 `json:"skX,omitempty"`
}

// Slot is a visual attachment point. Parent names the bone the slot follows;
// DisplayIndex is 1-based in the export and selects the initial display.
type Slot struct {
	Name         string `json:"name"`
	Parent       string `json:"parent"`
	DisplayIndex *int   `json:"displayIndex,omitempty"`
}

// Skin maps slots to their selectable displays (subtexture names).
type Skin struct {
	Slots []SkinSlot `json:"slot"`
}

// SkinSlot lists the displays one slot can switch between.
type SkinSlot struct {
	Name     string    `json:"name"`
	Displays []Display `json:"display,omitempty"`
}

// Display references one subtexture of the atlas by name.
type Display struct {
	Name string `json:"name"`
}

// Animation is one clip definition: a duration in frames plus per-bone and
// per-slot keyframe tracks.
type Animation struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`

	Bones []BoneTimeline `json:"bone"`
	Slots []SlotTimeline `json:"slot"`
}

// BoneTimeline carries the keyframe tracks driving one bone. A track that is
// absent from the export leaves the corresponding property untouched.
type BoneTimeline struct {
	Name            string  `json:"name"`
	TranslateFrames []Frame `json:"translateFrame,omitempty"`
	RotateFrames    []Frame `json:"rotateFrame,omitempty"`
	ScaleFrames     []Frame `json:"scaleFrame,omitempty"`
}

// SlotTimeline carries the display-switch track of one slot.
type SlotTimeline struct {
	Name          string  `json:"name"`
	DisplayFrames []Frame `json:"displayFrame,omitempty"`
}

// Frame is a single keyframe. All payload fields are optional and use pointer
// types to support null values; which fields are meaningful depends on the
// track the frame belongs to.
type Frame struct {
	// Duration is the keyframe length in frames. A nil duration is a
	// malformed export and rejected at load time; zero-duration frames are
	// valid markers that contribute no visible time.
	Duration *float64 `json:"duration"`

	// X and Y carry position offsets on translate tracks and scale factors
	// on scale tracks.
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// Rotate is the rotation in degrees. DragonBones exports
	// counterclockwise-positive angles; the runtime negates the value on
	// load so that positive stored rotation is clockwise.
	Rotate *float64 `json:"rotate,omitempty"`

	// Value is the display index on displayFrame tracks.
	Value *int `json:"value,omitempty"`
}
