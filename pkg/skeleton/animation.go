package skeleton

import (
	"fmt"

	"github.com/decker502/dragonbones/internal/dbjson"
)

type dbFrame = dbjson.Frame

// TrackKind identifies which property of a bone or slot a track drives.
// The names follow the DragonBones export keys.
type TrackKind string

const (
	TrackTranslate TrackKind = "translateFrame"
	TrackRotate    TrackKind = "rotateFrame"
	TrackScale     TrackKind = "scaleFrame"
	TrackDisplay   TrackKind = "displayFrame"
)

// trackKey addresses one track cursor: the bone or slot it drives plus the
// property kind.
type trackKey struct {
	target string
	kind   TrackKind
}

// clip is a loaded, validated animation definition: keyframe sequences keyed
// by (target, kind). The sequences are immutable and shared by every cursor
// instantiated over them.
type clip struct {
	name     string
	duration float64
	tracks   map[trackKey][]Keyframe
}

// newClip converts a raw animation definition into keyframe sequences,
// rejecting malformed keyframes once here rather than lazily during
// playback.
func newClip(def *dbjson.Animation) (*clip, error) {
	c := &clip{
		name:     def.Name,
		duration: def.Duration,
		tracks:   make(map[trackKey][]Keyframe),
	}

	for i := range def.Bones {
		tl := &def.Bones[i]
		kinds := []struct {
			kind   TrackKind
			frames []dbjson.Frame
		}{
			{TrackTranslate, tl.TranslateFrames},
			{TrackRotate, tl.RotateFrames},
			{TrackScale, tl.ScaleFrames},
		}
		for _, k := range kinds {
			if len(k.frames) == 0 {
				continue
			}
			if err := validateFrames(def.Name, tl.Name, string(k.kind), k.frames); err != nil {
				return nil, err
			}
			c.tracks[trackKey{tl.Name, k.kind}] = convertFrames(k.frames, k.kind)
		}
	}

	for i := range def.Slots {
		tl := &def.Slots[i]
		if len(tl.DisplayFrames) == 0 {
			continue
		}
		if err := validateFrames(def.Name, tl.Name, string(TrackDisplay), tl.DisplayFrames); err != nil {
			return nil, err
		}
		c.tracks[trackKey{tl.Name, TrackDisplay}] = convertFrames(tl.DisplayFrames, TrackDisplay)
	}

	return c, nil
}

// convertFrames builds the runtime keyframe sequence. Rotation payloads are
// stored negated: the export writes counterclockwise-positive angles while
// the runtime treats positive rotation as clockwise, the same flip the
// exporter applies to skew angles.
func convertFrames(frames []dbjson.Frame, kind TrackKind) []Keyframe {
	out := make([]Keyframe, len(frames))
	for i, f := range frames {
		k := Keyframe{
			Duration: *f.Duration,
			X:        f.X,
			Y:        f.Y,
			Value:    f.Value,
		}
		if kind == TrackRotate && f.Rotate != nil {
			neg := -*f.Rotate
			k.Rotate = &neg
		}
		out[i] = k
	}
	return out
}

// Animation plays one clip on a skeleton: it owns one KeyframeTrack cursor
// per (target, kind) pair and advances all of them by a shared step each
// tick, writing the sampled values into bone and slot targets. The live pose
// is never touched directly; each bone decides how quickly to approach its
// target.
type Animation struct {
	skel *Skeleton
	clip *clip

	framerate  float64
	startFrame float64
	speed      float64
	frame      float64

	smooth  bool
	playing bool

	// onEnd runs every time the frame counter passes the clip duration.
	// nil keeps the default loop behavior.
	onEnd func()

	tracks map[trackKey]*KeyframeTrack
}

func newAnimation(skel *Skeleton, c *clip, framerate, startFrame, speed float64, onEnd func()) (*Animation, error) {
	a := &Animation{
		skel:       skel,
		clip:       c,
		framerate:  framerate,
		startFrame: startFrame,
		speed:      speed,
		frame:      startFrame,
		smooth:     true,
		playing:    true,
		onEnd:      onEnd,
	}
	if err := a.instantiateTracks(startFrame); err != nil {
		return nil, err
	}
	return a, nil
}

// instantiateTracks creates fresh cursors for every track, positioned at the
// given clip frame.
func (a *Animation) instantiateTracks(frame float64) error {
	tracks := make(map[trackKey]*KeyframeTrack, len(a.clip.tracks))
	for key, frames := range a.clip.tracks {
		index, elapsed, err := cursorForFrame(frames, a.clip.duration, frame)
		if err != nil {
			return fmt.Errorf("clip %q, %s track of %q: %w", a.clip.name, key.kind, key.target, err)
		}
		tracks[key] = newKeyframeTrack(frames, index, elapsed)
	}
	a.tracks = tracks
	a.frame = frame
	return nil
}

// Name returns the clip name this player drives.
func (a *Animation) Name() string { return a.clip.name }

// Frame returns the player's frame counter within the clip.
func (a *Animation) Frame() float64 { return a.frame }

// Playing reports whether the player advances on Update.
func (a *Animation) Playing() bool { return a.playing }

// Pause stops advancing without discarding track cursors.
func (a *Animation) Pause() { a.playing = false }

// Unpause resumes a paused player.
func (a *Animation) Unpause() { a.playing = true }

// Restart rewinds the player to its original start frame with fresh cursors.
func (a *Animation) Restart() {
	// The start frame was validated at construction; re-seeking cannot fail.
	_ = a.instantiateTracks(a.startFrame)
}

// SetFrame seeks the player to an absolute clip frame.
func (a *Animation) SetFrame(frame float64) error {
	return a.instantiateTracks(frame)
}

// SetSpeed changes the playback speed multiplier.
func (a *Animation) SetSpeed(speed float64) { a.speed = speed }

// SetSmooth toggles interpolation for every owned track. When off, samples
// snap to the current keyframe's value instead of blending toward the next.
func (a *Animation) SetSmooth(smooth bool) { a.smooth = smooth }

// Update advances every track by dt worth of clip frames and writes the
// sampled targets. A replacement cursor returned by Advance is swapped in
// and sampled in the same tick, so one large step crossing several keyframes
// lands on the right values without a stutter frame.
func (a *Animation) Update(dt float64) {
	if !a.playing {
		return
	}

	step := dt * a.speed * a.framerate

	for key, cur := range a.tracks {
		if repl := cur.Advance(step); repl != nil {
			a.tracks[key] = repl
			cur = repl
		}
		a.apply(key, cur)
	}

	a.frame += step
	if a.clip.duration > 0 && a.frame >= a.clip.duration {
		a.frame -= a.clip.duration * float64(int(a.frame/a.clip.duration))
		if a.onEnd != nil {
			a.onEnd()
		}
	}
}

// apply samples one track cursor and routes the value to its target.
// Transform tracks interpolate between the current and upcoming keyframe;
// display tracks discretely select the current keyframe's value.
func (a *Animation) apply(key trackKey, cur *KeyframeTrack) {
	from, to := cur.SamplePair()

	t := 0.0
	if a.smooth {
		t = cur.Progress()
	}

	switch key.kind {
	case TrackTranslate:
		bone := a.skel.bonesByName[key.target]
		if bone == nil {
			return
		}
		bone.transform.targetRelativePosition = &Vec2{
			X: lerp(floatOr(from.X, 0), floatOr(to.X, 0), t),
			Y: lerp(floatOr(from.Y, 0), floatOr(to.Y, 0), t),
		}

	case TrackRotate:
		bone := a.skel.bonesByName[key.target]
		if bone == nil {
			return
		}
		angle := lerp(floatOr(from.Rotate, 0), floatOr(to.Rotate, 0), t)
		bone.transform.targetRelativeAngle = &angle

	case TrackScale:
		bone := a.skel.bonesByName[key.target]
		if bone == nil {
			return
		}
		bone.transform.targetRelativeScale = &Vec2{
			X: lerp(floatOr(from.X, 1), floatOr(to.X, 1), t),
			Y: lerp(floatOr(from.Y, 1), floatOr(to.Y, 1), t),
		}

	case TrackDisplay:
		slot := a.skel.slotsByName[key.target]
		if slot == nil {
			return
		}
		if from.Value != nil {
			slot.ChangeDisplay(*from.Value)
		} else {
			slot.ChangeDisplay(0)
		}
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// AnimationManager owns the loaded clips of one skeleton and the single
// currently running player. Switching clips discards the old player's
// cursors entirely; there is no pause/resume of stale tracks.
type AnimationManager struct {
	skel      *Skeleton
	clips     map[string]*clip
	framerate float64

	currentName string
	current     *Animation
}

// RunOptions tunes how a clip starts playing. The zero value starts at frame
// 0, at normal speed, looping silently.
type RunOptions struct {
	// StartFrame seeks the clip before playback begins. Must lie inside the
	// clip's declared duration.
	StartFrame float64

	// Speed is the playback speed multiplier; 0 means 1.0.
	Speed float64

	// OnEnd runs each time the clip's frame counter wraps past its duration.
	// Leave nil to loop silently. Running another clip from the callback is
	// allowed.
	OnEnd func()
}

func newAnimationManager(skel *Skeleton, arm *dbjson.Armature, framerate float64) (*AnimationManager, error) {
	m := &AnimationManager{
		skel:      skel,
		clips:     make(map[string]*clip, len(arm.Animations)),
		framerate: framerate,
	}
	for i := range arm.Animations {
		c, err := newClip(&arm.Animations[i])
		if err != nil {
			return nil, err
		}
		m.clips[c.name] = c
	}
	return m, nil
}

// Run switches the skeleton to another clip. Running the clip that is
// already current is a no-op. An empty name stops clip playback and eases
// the skeleton back to its default pose.
//
// Unknown clip names fail with ErrAnimationNotFound and invalid start frames
// with ErrInvalidSeekPosition; in both cases no state changes — the previous
// clip keeps playing.
func (m *AnimationManager) Run(name string, opts *RunOptions) error {
	if m.currentName == name {
		return nil
	}

	if name == "" {
		m.currentName = ""
		m.current = nil
		m.skel.onAnimationStart()
		m.skel.doDefaultPose()
		return nil
	}

	c, ok := m.clips[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
	}

	var startFrame, speed float64 = 0, 1
	var onEnd func()
	if opts != nil {
		startFrame = opts.StartFrame
		if opts.Speed != 0 {
			speed = opts.Speed
		}
		onEnd = opts.OnEnd
	}

	player, err := newAnimation(m.skel, c, m.framerate, startFrame, speed, onEnd)
	if err != nil {
		return err
	}

	// Default-pose targets and the fast-settle reset run before the new
	// player drives its own targets, so a switch is never contaminated by
	// the previous clip's pose.
	m.currentName = name
	m.skel.onAnimationStart()
	m.skel.doDefaultPose()
	m.current = player
	return nil
}

// Update advances the current player, if any.
func (m *AnimationManager) Update(dt float64) {
	if m.current != nil {
		m.current.Update(dt)
	}
}

// SetSmooth toggles interpolation on the current player.
func (m *AnimationManager) SetSmooth(smooth bool) error {
	if m.current == nil {
		return fmt.Errorf("no animation is currently playing")
	}
	m.current.SetSmooth(smooth)
	return nil
}

// CurrentName returns the running clip's name, or "" when none is playing.
func (m *AnimationManager) CurrentName() string { return m.currentName }

// Current returns the running player, or nil when none is playing.
func (m *AnimationManager) Current() *Animation { return m.current }

// ClipNames lists the loaded clips, for tooling and viewers.
func (m *AnimationManager) ClipNames() []string {
	names := make([]string, 0, len(m.clips))
	for name := range m.clips {
		names = append(names, name)
	}
	return names
}
