package skeleton

import "github.com/decker502/dragonbones/pkg/config"

// baseTransform is a bone's static bind-pose offset.
type baseTransform struct {
	position Vec2
	angle    float64
	scale    Vec2
}

// smoothingRates holds one blend rate per property group. Rates live in
// (0, 1]: 1 converges in a single normalized frame, smaller values ease.
type smoothingRates struct {
	position float64
	angle    float64
	scale    float64
}

// boneTransform converts a bone's relative pose plus its parent's world pose
// into the bone's world pose, easing toward targets on the way.
//
// Two independent blend passes run per tick: the relative pose blends toward
// the sampled animation targets, and after hierarchical derivation the world
// angle and scale blend once more toward their derived values. The second
// pass smooths discontinuities introduced by parent motion and must not be
// collapsed into the first.
type boneTransform struct {
	bone *Bone
	base baseTransform

	// Animation targets for the relative pose. nil means no target is set
	// and the property is left untouched.
	targetRelativePosition *Vec2
	targetRelativeAngle    *float64
	targetRelativeScale    *Vec2

	// Derived world targets for the post-derivation blend pass.
	targetAngle *float64
	targetScale *Vec2

	rates        smoothingRates
	betweenRates smoothingRates

	// fast-settle window: counts down from settleDuration after every
	// animation switch while rates interpolate back toward 1.
	settleTimer    float64
	settleDuration float64

	positionSmoothing bool
	angleSmoothing    bool
	scaleSmoothing    bool

	// fps normalizes blend steps so rates behave the same at any tick length.
	fps float64
}

func newBoneTransform(bone *Bone, base baseTransform, cfg *config.Config) *boneTransform {
	return &boneTransform{
		bone: bone,
		base: base,
		rates: smoothingRates{
			position: 1,
			angle:    1,
			scale:    1,
		},
		betweenRates: smoothingRates{
			position: cfg.Smoothing.BetweenAnimations.Position,
			angle:    cfg.Smoothing.BetweenAnimations.Angle,
			scale:    cfg.Smoothing.BetweenAnimations.Scale,
		},
		settleDuration:    cfg.Smoothing.SettleDuration,
		positionSmoothing: true,
		angleSmoothing:    true,
		scaleSmoothing:    true,
		fps:               cfg.FPS,
	}
}

func (t *boneTransform) setSmoothing(position, angle, scale *bool) {
	if position != nil {
		t.positionSmoothing = *position
	}
	if angle != nil {
		t.angleSmoothing = *angle
	}
	if scale != nil {
		t.scaleSmoothing = *scale
	}
}

// onAnimationStart arms the fast-settle window: every rate drops to its
// between-animations value and the countdown starts.
func (t *boneTransform) onAnimationStart() {
	t.settleTimer = t.settleDuration
	t.rates = t.betweenRates
}

// doDefaultPose retargets the relative pose to identity.
func (t *boneTransform) doDefaultPose() {
	t.targetRelativePosition = &Vec2{0, 0}
	zero := 0.0
	t.targetRelativeAngle = &zero
	t.targetRelativeScale = &Vec2{1, 1}
}

// shortestAngleDiff maps the difference onto the shortest circular path so a
// blend from 170 to -170 moves through 180, not through 0.
func shortestAngleDiff(target, current float64) float64 {
	d := target - current + 180
	d -= float64(int(d/360)) * 360
	if d < 0 {
		d += 360
	}
	return d - 180
}

func (t *boneTransform) updateRelativePositionToTarget(dt float64) {
	if t.targetRelativePosition == nil {
		return
	}
	if !t.positionSmoothing {
		t.bone.relativePosition = *t.targetRelativePosition
		return
	}
	k := t.rates.position * dt * t.fps
	t.bone.relativePosition.X += (t.targetRelativePosition.X - t.bone.relativePosition.X) * k
	t.bone.relativePosition.Y += (t.targetRelativePosition.Y - t.bone.relativePosition.Y) * k
}

func (t *boneTransform) updateRelativeAngleToTarget(dt float64) {
	if t.targetRelativeAngle == nil {
		return
	}
	if !t.angleSmoothing {
		t.bone.relativeAngle = *t.targetRelativeAngle
		return
	}
	diff := shortestAngleDiff(*t.targetRelativeAngle, t.bone.relativeAngle)
	t.bone.relativeAngle += diff * t.rates.angle * dt * t.fps
}

func (t *boneTransform) updateRelativeScaleToTarget(dt float64) {
	if t.targetRelativeScale == nil {
		return
	}
	if !t.scaleSmoothing {
		t.bone.relativeScale = *t.targetRelativeScale
		return
	}
	k := t.rates.scale * dt * t.fps
	t.bone.relativeScale.X += (t.targetRelativeScale.X - t.bone.relativeScale.X) * k
	t.bone.relativeScale.Y += (t.targetRelativeScale.Y - t.bone.relativeScale.Y) * k
}

// updateScale derives the world-scale target from the parent chain.
// A root parent contributes its x-scale mirrored; see updateAngle.
func (t *boneTransform) updateScale() {
	anchored := Vec2{
		X: t.bone.relativeScale.X * t.base.scale.X,
		Y: t.bone.relativeScale.Y * t.base.scale.Y,
	}

	_, _, parentScale, root := t.bone.parentPose()
	if root {
		parentScale.X = -parentScale.X
	}

	t.targetScale = &Vec2{
		X: parentScale.X * anchored.X,
		Y: parentScale.Y * anchored.Y,
	}
}

// updateAngle derives the world-angle target. The relative angle is weighted
// by the bone's current world scale signs so a mirrored bone rotates the
// other way. Root parents contribute an extra 180 degrees; together with the
// x-flip in updateScale this is the mirrored convention root bones follow.
// The offset matches the reference rigs but has only been confirmed against
// those; see DESIGN.md before generalizing.
func (t *boneTransform) updateAngle() {
	scaled := t.bone.relativeAngle * t.bone.worldScale.X * t.bone.worldScale.Y
	anchored := scaled + t.base.angle

	_, parentAngle, _, root := t.bone.parentPose()
	if root {
		parentAngle += 180
	}

	a := parentAngle + anchored
	t.targetAngle = &a
}

// updatePosition derives and writes the world position directly. Unlike
// angle and scale there is no post-derivation blend for position.
func (t *boneTransform) updatePosition() {
	anchored := Vec2{
		X: t.bone.relativePosition.X + t.base.position.X,
		Y: t.bone.relativePosition.Y + t.base.position.Y,
	}

	parentPos, parentAngle, parentScale, _ := t.bone.parentPose()
	scaled := Vec2{
		X: anchored.X * parentScale.X,
		Y: anchored.Y * parentScale.Y,
	}
	rotated := rotatePosition(scaled, parentAngle)

	t.bone.worldPosition = Vec2{
		X: parentPos.X + rotated.X,
		Y: parentPos.Y + rotated.Y,
	}
}

func (t *boneTransform) updateAngleToTarget(dt float64) {
	if t.targetAngle == nil {
		return
	}
	if !t.angleSmoothing {
		t.bone.worldAngle = *t.targetAngle
		return
	}
	diff := shortestAngleDiff(*t.targetAngle, t.bone.worldAngle)
	t.bone.worldAngle += diff * t.rates.angle * dt * t.fps
}

func (t *boneTransform) updateScaleToTarget(dt float64) {
	if t.targetScale == nil {
		return
	}
	if !t.scaleSmoothing {
		t.bone.worldScale = *t.targetScale
		return
	}
	k := t.rates.scale * dt * t.fps
	t.bone.worldScale.X += (t.targetScale.X - t.bone.worldScale.X) * k
	t.bone.worldScale.Y += (t.targetScale.Y - t.bone.worldScale.Y) * k
}

// updateSettleTimer eases the blend rates from the between-animations values
// toward 1 while the fast-settle window is open. Once the timer crosses zero
// it is pinned there and the rates keep their last interpolated value, a
// shade under 1.
func (t *boneTransform) updateSettleTimer(dt float64) {
	if t.settleTimer <= 0 {
		t.settleTimer = 0
		return
	}

	pct := 1 - t.settleTimer/t.settleDuration
	t.rates.position = t.betweenRates.position + (1-t.betweenRates.position)*pct
	t.rates.angle = t.betweenRates.angle + (1-t.betweenRates.angle)*pct
	t.rates.scale = t.betweenRates.scale + (1-t.betweenRates.scale)*pct

	t.settleTimer -= dt
}

// update runs the full per-tick state machine. Order matters: the relative
// blends feed the derivation, updateAngle reads the world scale of the
// previous tick, and the world-target blends run after derivation.
func (t *boneTransform) update(dt float64) {
	t.updateRelativePositionToTarget(dt)
	t.updateRelativeAngleToTarget(dt)
	t.updateRelativeScaleToTarget(dt)

	t.updateScale()
	t.updateAngle()
	t.updatePosition()

	t.updateAngleToTarget(dt)
	t.updateScaleToTarget(dt)

	t.updateSettleTimer(dt)
}
