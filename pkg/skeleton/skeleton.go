// Package skeleton implements the runtime core of the DragonBones player:
// keyframe track traversal, clip playback and the hierarchical bone
// transform pipeline that turns relative poses into world poses.
//
// The whole update is single-threaded and synchronous. One tick
// (Skeleton.Update) runs to completion before any other mutation is allowed;
// track cursors are owned by the running Animation and bone poses by their
// own bone, so no locking is needed anywhere on the hot path.
package skeleton

import (
	"fmt"

	"github.com/decker502/dragonbones/internal/dbjson"
	"github.com/decker502/dragonbones/pkg/config"
)

// Skeleton owns the bone tree of one armature, the attached slots and the
// animation manager driving them.
type Skeleton struct {
	cfg *config.Config

	// bones in parent-before-child order; the update walk follows this
	// slice. The tree is static after Load.
	bones       []*Bone
	bonesByName map[string]*Bone

	slots       []*Slot
	slotsByName map[string]*Slot

	position Vec2
	angle    float64
	scale    Vec2

	// targetAngle enables skeleton-level angle easing; nil means no easing.
	targetAngle *float64

	anim *AnimationManager

	// visuals gates bone/slot pose propagation. Headless users (tests,
	// logic-only simulation) can turn it off and still advance clip time.
	visuals bool
}

// LoadFile loads a skeleton from a `_ske.json` file path.
func LoadFile(path string, cfg *config.Config) (*Skeleton, error) {
	def, err := dbjson.ParseSkeletonFile(path)
	if err != nil {
		return nil, err
	}
	return Load(def, cfg)
}

// LoadProjectDir loads a skeleton from a DragonBones project folder named
// after its entity (the folder containing `<entity>_ske.json`).
func LoadProjectDir(dir string, cfg *config.Config) (*Skeleton, error) {
	def, err := dbjson.ParseProjectDir(dir)
	if err != nil {
		return nil, err
	}
	return Load(def, cfg)
}

// Load builds the runtime skeleton from a parsed definition. All validation
// happens here, once: malformed keyframe durations, missing bone parents and
// parent cycles are load errors, never playback surprises. A nil cfg uses
// config.Default().
func Load(def *dbjson.SkeletonJSON, cfg *config.Config) (*Skeleton, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	arm := def.Armature()

	s := &Skeleton{
		cfg:         cfg,
		bonesByName: make(map[string]*Bone, len(arm.Bones)),
		slotsByName: make(map[string]*Slot, len(arm.Slots)),
		scale:       Vec2{cfg.GlobalScale, cfg.GlobalScale},
		visuals:     true,
	}

	if err := s.loadBones(arm); err != nil {
		return nil, err
	}
	if err := s.loadSlots(arm); err != nil {
		return nil, err
	}

	framerate := float64(def.FrameRate)
	if framerate <= 0 {
		framerate = 30
	}
	anim, err := newAnimationManager(s, arm, framerate)
	if err != nil {
		return nil, err
	}
	s.anim = anim

	return s, nil
}

// loadBones builds the bone arena and resolves parent links. The resulting
// order is parent-before-child so a single forward walk updates the whole
// tree.
func (s *Skeleton) loadBones(arm *dbjson.Armature) error {
	parents := make(map[string]string)

	unordered := make([]*Bone, 0, len(arm.Bones))
	for i := range arm.Bones {
		def := &arm.Bones[i]
		if _, dup := s.bonesByName[def.Name]; dup {
			return fmt.Errorf("duplicate bone name %q", def.Name)
		}
		bone := newBone(def.Name, baseFromTransform(def.Transform), s)
		s.bonesByName[def.Name] = bone
		unordered = append(unordered, bone)
		if def.Parent != "" {
			parents[def.Name] = def.Parent
		}
	}

	for name, parentName := range parents {
		parent, ok := s.bonesByName[parentName]
		if !ok {
			return fmt.Errorf("%w: bone %q names parent %q", ErrMissingParentReference, name, parentName)
		}
		s.bonesByName[name].parent = parent
	}

	// Parent-before-child ordering: peel off bones whose parent is already
	// placed. If a pass places nothing, the remaining parent links form a
	// cycle.
	placed := make(map[*Bone]bool, len(unordered))
	s.bones = make([]*Bone, 0, len(unordered))
	remaining := unordered
	for len(remaining) > 0 {
		next := remaining[:0]
		progressed := false
		for _, b := range remaining {
			if b.parent == nil || placed[b.parent] {
				s.bones = append(s.bones, b)
				placed[b] = true
				progressed = true
			} else {
				next = append(next, b)
			}
		}
		if !progressed {
			return fmt.Errorf("%w: %d bone(s) unreachable from the root", ErrCyclicBoneGraph, len(next))
		}
		remaining = next
	}

	return nil
}

func baseFromTransform(t *dbjson.Transform) baseTransform {
	base := baseTransform{scale: Vec2{1, 1}}
	if t == nil {
		return base
	}
	if t.X != nil {
		base.position.X = *t.X
	}
	if t.Y != nil {
		base.position.Y = *t.Y
	}
	if t.ScaleX != nil {
		base.scale.X = *t.ScaleX
	}
	if t.ScaleY != nil {
		base.scale.Y = *t.ScaleY
	}
	if t.SkewX != nil {
		// Negative export angles wrap to their positive equivalent.
		a := *t.SkewX
		if a < 0 {
			a += 360
		}
		base.angle = a
	}
	return base
}

// loadSlots attaches slots to their bones and binds the skin's display
// lists. The exported displayIndex is 1-based; absent means the first
// display.
func (s *Skeleton) loadSlots(arm *dbjson.Armature) error {
	var skin *dbjson.Skin
	if len(arm.Skins) > 0 {
		skin = &arm.Skins[0]
	}

	for i := range arm.Slots {
		def := &arm.Slots[i]
		bone, ok := s.bonesByName[def.Parent]
		if !ok {
			return fmt.Errorf("%w: slot %q names bone %q", ErrMissingParentReference, def.Name, def.Parent)
		}

		var displays []string
		if skin != nil {
			for j := range skin.Slots {
				if skin.Slots[j].Name == def.Name {
					for _, d := range skin.Slots[j].Displays {
						displays = append(displays, d.Name)
					}
					break
				}
			}
		}

		defaultDisplay := 0
		if def.DisplayIndex != nil {
			defaultDisplay = *def.DisplayIndex - 1
		}

		slot := newSlot(def.Name, bone, displays, defaultDisplay)
		bone.slots = append(bone.slots, slot)
		s.slots = append(s.slots, slot)
		s.slotsByName[def.Name] = slot
	}

	return nil
}

// Run switches the skeleton to the named clip. An empty name eases the
// skeleton back to its default pose. See AnimationManager.Run for the error
// contract.
func (s *Skeleton) Run(name string, opts *RunOptions) error {
	return s.anim.Run(name, opts)
}

// CurrentAnimationName returns the running clip's name, "" when none.
func (s *Skeleton) CurrentAnimationName() string {
	return s.anim.CurrentName()
}

// Animations exposes the skeleton's animation manager.
func (s *Skeleton) Animations() *AnimationManager { return s.anim }

// Update runs one tick: the player samples targets into the bones, the
// skeleton-level angle easing runs, and, with visuals enabled, every bone
// recomputes its world pose in parent-before-child order.
func (s *Skeleton) Update(dt float64) {
	s.anim.Update(dt)
	s.updateAngleToTarget(dt)

	if !s.visuals {
		return
	}
	for _, b := range s.bones {
		b.update(dt)
	}
}

func (s *Skeleton) updateAngleToTarget(dt float64) {
	if s.targetAngle == nil {
		return
	}
	diff := shortestAngleDiff(*s.targetAngle, s.angle)
	s.angle += diff * s.cfg.AngleSmoothingSpeed * dt
}

// SetSmoothing enables or disables per-bone smoothing per property group,
// for every bone. A nil parameter leaves that group unchanged.
func (s *Skeleton) SetSmoothing(position, angle, scale *bool) {
	for _, b := range s.bones {
		b.SetSmoothing(position, angle, scale)
	}
}

// SetSmooth toggles keyframe interpolation on the current player.
func (s *Skeleton) SetSmooth(smooth bool) error {
	return s.anim.SetSmooth(smooth)
}

// SetVisuals gates bone and slot pose propagation. Clip time still advances
// when visuals are off.
func (s *Skeleton) SetVisuals(enabled bool) { s.visuals = enabled }

// SetPosition moves the skeleton's world position. Physics collaborators
// driving the root call this once per tick before Update.
func (s *Skeleton) SetPosition(x, y float64) {
	s.position = Vec2{x, y}
}

// SetAngle sets the skeleton's world angle in degrees, cancelling any
// pending target-angle easing.
func (s *Skeleton) SetAngle(angle float64) {
	s.angle = angle
	s.targetAngle = nil
}

// SetTargetAngle eases the skeleton toward the given angle over the next
// ticks instead of snapping.
func (s *Skeleton) SetTargetAngle(angle float64) {
	a := angle
	s.targetAngle = &a
}

// SetScale sets the skeleton's scale factors.
func (s *Skeleton) SetScale(x, y float64) {
	s.scale = Vec2{x, y}
}

// Position returns the skeleton's world position.
func (s *Skeleton) Position() Vec2 { return s.position }

// Angle returns the skeleton's world angle in degrees.
func (s *Skeleton) Angle() float64 { return s.angle }

// Scale returns the skeleton's scale factors.
func (s *Skeleton) Scale() Vec2 { return s.scale }

// Bone looks up a bone by name, nil when absent.
func (s *Skeleton) Bone(name string) *Bone { return s.bonesByName[name] }

// Bones returns every bone in parent-before-child order.
func (s *Skeleton) Bones() []*Bone { return s.bones }

// Slot looks up a slot by name, nil when absent.
func (s *Skeleton) Slot(name string) *Slot { return s.slotsByName[name] }

// Slots returns every slot in armature order, which is also draw order.
func (s *Skeleton) Slots() []*Slot { return s.slots }

// onAnimationStart resets every bone's smoothing rates into the fast-settle
// window.
func (s *Skeleton) onAnimationStart() {
	for _, b := range s.bones {
		b.onAnimationStart()
	}
}

// doDefaultPose retargets every bone and slot to the bind pose.
func (s *Skeleton) doDefaultPose() {
	for _, b := range s.bones {
		b.doDefaultPose()
	}
}
