package skeleton

import "math"

// Vec2 is a 2D vector of position, scale factors or offsets.
type Vec2 struct {
	X, Y float64
}

// rotatePosition rotates p by angle degrees, clockwise-positive. Stored
// rotations follow the export sign convention where positive angles turn
// clockwise, hence the negation before the standard rotation.
func rotatePosition(p Vec2, angle float64) Vec2 {
	rad := -angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec2{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Bone is one node of the skeletal hierarchy. It owns its pose and smoothing
// state; the pose is only ever written by the bone's own update, which runs
// exactly once per tick in parent-before-child order.
type Bone struct {
	name string

	// parent is resolved once at load time. nil means the bone hangs off the
	// skeleton root.
	parent *Bone
	skel   *Skeleton

	// relative pose: authoritative inputs, driven toward targets by the
	// transform state machine.
	relativePosition Vec2
	relativeAngle    float64
	relativeScale    Vec2

	// world pose: derived outputs, recomputed every tick.
	worldPosition Vec2
	worldAngle    float64
	worldScale    Vec2

	transform *boneTransform

	slots []*Slot
}

func newBone(name string, base baseTransform, skel *Skeleton) *Bone {
	b := &Bone{
		name:          name,
		skel:          skel,
		relativeScale: Vec2{1, 1},
		worldScale:    Vec2{1, 1},
	}
	b.transform = newBoneTransform(b, base, skel.cfg)
	return b
}

// Name returns the bone's identity within the armature.
func (b *Bone) Name() string { return b.name }

// WorldPosition returns the bone's absolute position after propagating
// through the parent chain.
func (b *Bone) WorldPosition() Vec2 { return b.worldPosition }

// WorldAngle returns the bone's absolute angle in degrees.
func (b *Bone) WorldAngle() float64 { return b.worldAngle }

// WorldScale returns the bone's absolute scale factors.
func (b *Bone) WorldScale() Vec2 { return b.worldScale }

// RelativePosition returns the bone's pose relative to its parent.
func (b *Bone) RelativePosition() Vec2 { return b.relativePosition }

// RelativeAngle returns the bone's angle relative to its parent, in degrees.
func (b *Bone) RelativeAngle() float64 { return b.relativeAngle }

// RelativeScale returns the bone's scale relative to its parent.
func (b *Bone) RelativeScale() Vec2 { return b.relativeScale }

// Slots returns the visual attachments following this bone.
func (b *Bone) Slots() []*Slot { return b.slots }

// SetSmoothing enables or disables smoothing per property group. A nil
// parameter leaves that group's setting unchanged.
func (b *Bone) SetSmoothing(position, angle, scale *bool) {
	b.transform.setSmoothing(position, angle, scale)
}

// parentPose reports the world pose this bone derives from. For root bones
// that is the skeleton itself, flagged so the transform can apply the
// mirrored root convention.
func (b *Bone) parentPose() (pos Vec2, angle float64, scale Vec2, root bool) {
	if b.parent == nil {
		return b.skel.position, b.skel.angle, b.skel.scale, true
	}
	return b.parent.worldPosition, b.parent.worldAngle, b.parent.worldScale, false
}

func (b *Bone) onAnimationStart() {
	b.transform.onAnimationStart()
}

// doDefaultPose retargets the bone to the identity pose. The live relative
// pose is left alone so smoothing can ease back instead of snapping.
func (b *Bone) doDefaultPose() {
	b.transform.doDefaultPose()
	for _, slot := range b.slots {
		slot.doDefaultPose()
	}
}

// update runs the bone's per-tick state machine and lets attached slots
// follow the resulting world pose. The parent's world pose must already be
// up to date for this tick.
func (b *Bone) update(dt float64) {
	b.transform.update(dt)

	for _, slot := range b.slots {
		slot.followBone()
	}
}
