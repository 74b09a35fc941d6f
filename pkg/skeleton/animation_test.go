package skeleton

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/dragonbones/internal/dbjson"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

// testDef builds a small armature: a root bone, one child bone with a slot,
// and two clips ("walk" rotates the arm, "slide" translates it).
func testDef() *dbjson.SkeletonJSON {
	return &dbjson.SkeletonJSON{
		FrameRate: 30,
		Armatures: []dbjson.Armature{{
			Name: "hero",
			Bones: []dbjson.Bone{
				{Name: "root"},
				{Name: "arm", Parent: "root", Transform: &dbjson.Transform{X: fp(5)}},
			},
			Slots: []dbjson.Slot{
				{Name: "hand", Parent: "arm"},
			},
			Skins: []dbjson.Skin{{
				Slots: []dbjson.SkinSlot{{
					Name: "hand",
					Displays: []dbjson.Display{
						{Name: "hand_open"},
						{Name: "hand_fist"},
					},
				}},
			}},
			Animations: []dbjson.Animation{
				{
					Name:     "walk",
					Duration: 4,
					Bones: []dbjson.BoneTimeline{{
						Name: "arm",
						RotateFrames: []dbjson.Frame{
							{Duration: fp(2), Rotate: fp(90)},
							{Duration: fp(2), Rotate: fp(0)},
						},
					}},
				},
				{
					Name:     "slide",
					Duration: 4,
					Bones: []dbjson.BoneTimeline{{
						Name: "arm",
						TranslateFrames: []dbjson.Frame{
							{Duration: fp(2), X: fp(0)},
							{Duration: fp(2), X: fp(10)},
						},
					}},
					Slots: []dbjson.SlotTimeline{{
						Name: "hand",
						DisplayFrames: []dbjson.Frame{
							{Duration: fp(2), Value: ip(1)},
							{Duration: fp(2), Value: ip(-1)},
						},
					}},
				},
			},
		}},
	}
}

func loadTestSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	skel, err := Load(testDef(), nil)
	if err != nil {
		t.Fatalf("Failed to load skeleton: %v", err)
	}
	return skel
}

// tick is one update at the tick length where one tick equals one clip frame
// at the test armature's frame rate.
const tick = 1.0 / 30

func TestRun_UnknownClipLeavesStateUntouched(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	player := skel.Animations().Current()

	err := skel.Run("moonwalk", nil)
	if !errors.Is(err, ErrAnimationNotFound) {
		t.Fatalf("Expected ErrAnimationNotFound, got %v", err)
	}
	if got := skel.CurrentAnimationName(); got != "walk" {
		t.Errorf("Expected current clip to stay \"walk\", got %q", got)
	}
	if skel.Animations().Current() != player {
		t.Errorf("Expected the running player to survive a failed switch")
	}
}

func TestRun_InvalidStartFrameLeavesStateUntouched(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}

	err := skel.Run("slide", &RunOptions{StartFrame: 100})
	if !errors.Is(err, ErrInvalidSeekPosition) {
		t.Fatalf("Expected ErrInvalidSeekPosition, got %v", err)
	}
	if got := skel.CurrentAnimationName(); got != "walk" {
		t.Errorf("Expected current clip to stay \"walk\", got %q", got)
	}
}

func TestRun_SameClipIsNoop(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	player := skel.Animations().Current()
	skel.Update(tick)

	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Expected re-running the current clip to be a no-op, got %v", err)
	}
	if skel.Animations().Current() != player {
		t.Errorf("Expected the same player instance after a same-name Run")
	}
}

func TestRun_EmptyNameReturnsToDefaultPose(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	skel.Update(tick)

	if err := skel.Run("", nil); err != nil {
		t.Fatalf("Failed to stop playback: %v", err)
	}
	if got := skel.CurrentAnimationName(); got != "" {
		t.Errorf("Expected no current clip, got %q", got)
	}
	if skel.Animations().Current() != nil {
		t.Errorf("Expected no current player")
	}

	// Bones must be retargeted to identity, not snapped.
	tr := skel.Bone("arm").transform
	if tr.targetRelativeAngle == nil || *tr.targetRelativeAngle != 0 {
		t.Errorf("Expected identity angle target, got %v", tr.targetRelativeAngle)
	}
	if tr.targetRelativeScale == nil || *tr.targetRelativeScale != (Vec2{1, 1}) {
		t.Errorf("Expected identity scale target, got %v", tr.targetRelativeScale)
	}
}

func TestRun_SwitchArmsFastSettleWindow(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}

	tr := skel.Bone("arm").transform
	if tr.settleTimer != tr.settleDuration {
		t.Errorf("Expected settle timer armed to %g, got %g", tr.settleDuration, tr.settleTimer)
	}
	if tr.rates != tr.betweenRates {
		t.Errorf("Expected rates dropped to between-animation values, got %+v", tr.rates)
	}
}

func TestUpdate_InterpolatesBetweenKeyframes(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("slide", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}

	// The first tick samples frame 0, the second samples halfway into the
	// first keyframe: x blends from 0 toward 10.
	skel.Update(tick)
	skel.Update(tick)

	target := skel.Bone("arm").transform.targetRelativePosition
	if target == nil {
		t.Fatal("Expected a position target")
	}
	if math.Abs(target.X-5) > 1e-9 {
		t.Errorf("Expected interpolated x=5, got %g", target.X)
	}
}

func TestUpdate_InterpolationDisabledSamplesCurrentKeyframe(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("slide", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	if err := skel.SetSmooth(false); err != nil {
		t.Fatalf("Failed to disable interpolation: %v", err)
	}

	skel.Update(tick)
	skel.Update(tick)

	target := skel.Bone("arm").transform.targetRelativePosition
	if target == nil {
		t.Fatal("Expected a position target")
	}
	if target.X != 0 {
		t.Errorf("Expected x=0 without interpolation, got %g", target.X)
	}
}

// Exported rotations are counterclockwise-positive; the runtime stores them
// negated.
func TestUpdate_RotationSignIsFlipped(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	if err := skel.SetSmooth(false); err != nil {
		t.Fatalf("Failed to disable interpolation: %v", err)
	}

	skel.Update(tick)

	target := skel.Bone("arm").transform.targetRelativeAngle
	if target == nil {
		t.Fatal("Expected an angle target")
	}
	if *target != -90 {
		t.Errorf("Expected flipped rotation -90, got %g", *target)
	}
}

func TestUpdate_DisplayTrackSwitchesSlot(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("slide", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	slot := skel.Slot("hand")

	skel.Update(tick)
	if got := slot.DisplayIndex(); got != 1 {
		t.Errorf("Expected display index 1, got %d", got)
	}
	if got := slot.DisplayName(); got != "hand_fist" {
		t.Errorf("Expected display \"hand_fist\", got %q", got)
	}

	// Past the first keyframe the track hides the slot.
	skel.Update(tick)
	skel.Update(tick)
	skel.Update(tick)
	if got := slot.DisplayIndex(); got != -1 {
		t.Errorf("Expected hidden slot (index -1), got %d", got)
	}
	if got := slot.DisplayName(); got != "" {
		t.Errorf("Expected empty display name for hidden slot, got %q", got)
	}
}

func TestUpdate_OnEndFiresOnWrap(t *testing.T) {
	skel := loadTestSkeleton(t)
	ended := 0
	err := skel.Run("walk", &RunOptions{OnEnd: func() { ended++ }})
	if err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}

	for i := 0; i < 4; i++ {
		skel.Update(tick)
	}
	if ended != 1 {
		t.Errorf("Expected OnEnd to fire once, got %d", ended)
	}

	cur := skel.Animations().Current()
	if cur.Frame() != 0 {
		t.Errorf("Expected frame counter to wrap to 0, got %g", cur.Frame())
	}
}

func TestUpdate_SpeedMultiplier(t *testing.T) {
	skel := loadTestSkeleton(t)
	err := skel.Run("walk", &RunOptions{Speed: 2})
	if err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}

	skel.Update(tick)
	if got := skel.Animations().Current().Frame(); math.Abs(got-2) > 1e-9 {
		t.Errorf("Expected frame 2 after one tick at 2x speed, got %g", got)
	}
}

func TestAnimation_PauseAndRestart(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.Run("walk", nil); err != nil {
		t.Fatalf("Failed to run clip: %v", err)
	}
	cur := skel.Animations().Current()

	skel.Update(tick)
	frame := cur.Frame()
	if frame == 0 {
		t.Fatal("Expected playback to advance")
	}

	cur.Pause()
	skel.Update(tick)
	if cur.Frame() != frame {
		t.Errorf("Expected paused frame %g, got %g", frame, cur.Frame())
	}

	cur.Unpause()
	skel.Update(tick)
	if cur.Frame() == frame {
		t.Errorf("Expected playback to resume after unpause")
	}

	cur.Restart()
	if cur.Frame() != 0 {
		t.Errorf("Expected restart at frame 0, got %g", cur.Frame())
	}
}

func TestRun_StartFrameSeeksTracks(t *testing.T) {
	skel := loadTestSkeleton(t)
	err := skel.Run("slide", &RunOptions{StartFrame: 3})
	if err != nil {
		t.Fatalf("Failed to run clip with start frame: %v", err)
	}
	if err := skel.SetSmooth(false); err != nil {
		t.Fatalf("Failed to disable interpolation: %v", err)
	}

	// Frame 3 lies inside the second keyframe (x=10).
	skel.Update(tick)
	target := skel.Bone("arm").transform.targetRelativePosition
	if target == nil {
		t.Fatal("Expected a position target")
	}
	if target.X != 10 {
		t.Errorf("Expected x=10 at start frame 3, got %g", target.X)
	}
}

func TestLoad_RejectsMalformedKeyframes(t *testing.T) {
	def := testDef()
	def.Armatures[0].Animations[0].Bones[0].RotateFrames[0].Duration = nil

	_, err := Load(def, nil)
	if !errors.Is(err, ErrMalformedKeyframeData) {
		t.Errorf("Expected ErrMalformedKeyframeData at load time, got %v", err)
	}
}

func TestClipNames(t *testing.T) {
	skel := loadTestSkeleton(t)

	names := skel.Animations().ClipNames()
	if len(names) != 2 {
		t.Fatalf("Expected 2 clips, got %d", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["walk"] || !seen["slide"] {
		t.Errorf("Expected clips \"walk\" and \"slide\", got %v", names)
	}
}

func TestSetSmooth_RequiresRunningClip(t *testing.T) {
	skel := loadTestSkeleton(t)
	if err := skel.SetSmooth(false); err == nil {
		t.Error("Expected an error when no clip is playing")
	}
}
