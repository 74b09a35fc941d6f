package skeleton

// Slot is a visual attachment point on a bone. It follows the bone's world
// pose and shows one of several selectable displays (atlas subtextures);
// display tracks switch the selection during playback.
type Slot struct {
	name string
	bone *Bone

	// relative offsets on top of the bone's world pose. These are not
	// animated by clip tracks; they exist for callers that need to nudge an
	// attachment.
	relativePosition Vec2
	relativeAngle    float64
	relativeScale    Vec2

	worldPosition Vec2
	worldAngle    float64
	worldScale    Vec2

	// displays are the subtexture names the slot can switch between, in
	// skin order.
	displays []string

	defaultDisplay int
	currentDisplay int
}

func newSlot(name string, bone *Bone, displays []string, defaultDisplay int) *Slot {
	s := &Slot{
		name:           name,
		bone:           bone,
		relativeScale:  Vec2{1, 1},
		worldScale:     Vec2{1, 1},
		displays:       displays,
		defaultDisplay: defaultDisplay,
		currentDisplay: defaultDisplay,
	}
	return s
}

// Name returns the slot's identity within the armature.
func (s *Slot) Name() string { return s.name }

// Bone returns the bone this slot is attached to.
func (s *Slot) Bone() *Bone { return s.bone }

// DisplayIndex returns the currently selected display. A negative index
// means the slot shows nothing.
func (s *Slot) DisplayIndex() int { return s.currentDisplay }

// DisplayName returns the subtexture name of the current display, or "" when
// the slot is hidden or the index is out of range.
func (s *Slot) DisplayName() string {
	if s.currentDisplay < 0 || s.currentDisplay >= len(s.displays) {
		return ""
	}
	return s.displays[s.currentDisplay]
}

// WorldPosition returns the slot's absolute position for rendering.
func (s *Slot) WorldPosition() Vec2 { return s.worldPosition }

// WorldAngle returns the slot's absolute angle in degrees.
func (s *Slot) WorldAngle() float64 { return s.worldAngle }

// WorldScale returns the slot's absolute scale factors.
func (s *Slot) WorldScale() Vec2 { return s.worldScale }

// ChangeDisplay selects which display the slot shows. Indexes outside the
// display list hide the slot.
func (s *Slot) ChangeDisplay(index int) {
	s.currentDisplay = index
}

func (s *Slot) doDefaultPose() {
	s.currentDisplay = s.defaultDisplay
}

// followBone recomputes the slot's world pose from its bone. Offsets add on
// top of the bone's pose without re-rotating: slots inherit orientation, not
// a second transform hierarchy.
func (s *Slot) followBone() {
	s.worldPosition = Vec2{
		X: s.bone.worldPosition.X + s.relativePosition.X,
		Y: s.bone.worldPosition.Y + s.relativePosition.Y,
	}
	s.worldAngle = s.bone.worldAngle + s.relativeAngle
	s.worldScale = Vec2{
		X: s.bone.worldScale.X * s.relativeScale.X,
		Y: s.bone.worldScale.Y * s.relativeScale.Y,
	}
}
