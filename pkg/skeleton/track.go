package skeleton

import "fmt"

// Keyframe is one discrete timed sample on an animation track. Duration is
// expressed in frames at the clip's frame rate; zero-duration keyframes are
// markers that contribute no visible time but are still applied when reached.
//
// Payload fields are optional. Which of them are meaningful depends on the
// track kind: X/Y for translate and scale tracks, Rotate for rotate tracks,
// Value for display tracks. Missing payload values fall back to the property
// identity (0 for position and rotation, 1 for scale, 0 for display).
type Keyframe struct {
	Duration float64

	X      *float64
	Y      *float64
	Rotate *float64
	Value  *int
}

// KeyframeTrack is a playback cursor over an immutable keyframe sequence.
// The sequence is shared between cursors; the cursor state (index, elapsed)
// is exclusively owned by one animation player at a time.
//
// Advancing past the end of the current keyframe does not mutate the cursor
// in place: Advance returns a freshly constructed replacement so the caller
// can detect the transition and swap its bookkeeping atomically.
type KeyframeTrack struct {
	frames []Keyframe

	index   int
	elapsed float64
	total   float64 // duration of frames[index], cached

	// sampleAt is the elapsed value the current tick samples at. It lags
	// elapsed by one step so a sample is always evaluated before the step
	// that was just applied.
	sampleAt float64

	// frozen marks a degenerate track with no positive-duration keyframe.
	// Advancing such a track would loop forever looking for the next valid
	// index, so it is pinned to a fixed pose instead.
	frozen bool
}

func newKeyframeTrack(frames []Keyframe, index int, elapsed float64) *KeyframeTrack {
	kt := &KeyframeTrack{
		frames:   frames,
		index:    index,
		elapsed:  elapsed,
		sampleAt: elapsed,
		frozen:   !hasPositiveDuration(frames),
	}
	if len(frames) > 0 {
		kt.total = frames[index].Duration
	}
	return kt
}

func hasPositiveDuration(frames []Keyframe) bool {
	for i := range frames {
		if frames[i].Duration > 0 {
			return true
		}
	}
	return false
}

// Advance moves the cursor forward by step frames.
//
// While the current keyframe is not exhausted the cursor advances in place
// and Advance returns nil. Once elapsed has crossed the keyframe's duration,
// Advance walks forward to the next keyframe with a positive duration whose
// accumulated time exceeds the carried remainder, wrapping to index 0 past
// the end of the sequence (loop playback), and returns a replacement cursor
// positioned at elapsed = remainder + step. The original step is re-applied
// on top of the remainder, carrying the time debt from overshooting the
// previous keyframe.
func (kt *KeyframeTrack) Advance(step float64) *KeyframeTrack {
	if kt.frozen {
		return nil
	}

	if kt.elapsed >= kt.total {
		remainder := kt.elapsed - kt.total
		next := kt.nextValidIndex(remainder)
		return newKeyframeTrack(kt.frames, next, remainder+step)
	}

	kt.sampleAt = kt.elapsed
	kt.elapsed += step
	return nil
}

// nextValidIndex walks forward from the current index, skipping keyframes
// whose own duration is zero or whose accumulated duration has not yet
// exceeded the remainder. Termination is guaranteed because frozen tracks
// never reach this walk.
func (kt *KeyframeTrack) nextValidIndex(remainder float64) int {
	index := kt.index
	sum := 0.0
	for {
		index = kt.nextIndex(index)
		d := kt.frames[index].Duration
		sum += d
		if d > 0 && sum > remainder {
			return index
		}
	}
}

// nextIndex returns the index following i, wrapping to 0 after the last one.
func (kt *KeyframeTrack) nextIndex(i int) int {
	if i+1 < len(kt.frames) {
		return i + 1
	}
	return 0
}

// SamplePair returns the current keyframe and the upcoming one, following the
// same wraparound rule as Advance. The sampler interpolates between the two.
func (kt *KeyframeTrack) SamplePair() (Keyframe, Keyframe) {
	return kt.frames[kt.index], kt.frames[kt.nextIndex(kt.index)]
}

// Progress returns the sampling fraction within the current keyframe,
// clamped to [0, 1]. A zero-duration keyframe samples at 0.
func (kt *KeyframeTrack) Progress() float64 {
	if kt.total <= 0 {
		return 0
	}
	t := kt.sampleAt / kt.total
	if t > 1 {
		return 1
	}
	return t
}

// Index returns the cursor's current keyframe index.
func (kt *KeyframeTrack) Index() int { return kt.index }

// Elapsed returns the time spent in the current keyframe. It may exceed the
// keyframe's duration between ticks; the next Advance corrects it.
func (kt *KeyframeTrack) Elapsed() float64 { return kt.elapsed }

// cursorForFrame converts an absolute clip frame into the (index, elapsed)
// cursor position inside frames. Keyframes with non-positive durations span
// no time and are stepped over. Seeking at or beyond clipDuration fails with
// ErrInvalidSeekPosition.
func cursorForFrame(frames []Keyframe, clipDuration, frame float64) (int, float64, error) {
	if frame < 0 || (clipDuration > 0 && frame >= clipDuration) {
		return 0, 0, fmt.Errorf("%w: frame %g outside clip duration %g",
			ErrInvalidSeekPosition, frame, clipDuration)
	}

	start := 0.0
	for i := range frames {
		d := frames[i].Duration
		if d <= 0 {
			continue
		}
		if frame < start+d {
			return i, frame - start, nil
		}
		start += d
	}

	// A track with no positive-duration keyframe spans no time at all; it is
	// frozen at its first keyframe instead of failing (or worse, looping
	// forever during traversal).
	if !hasPositiveDuration(frames) {
		return 0, 0, nil
	}

	return 0, 0, fmt.Errorf("%w: track ends at frame %g, before requested frame %g",
		ErrInvalidSeekPosition, start, frame)
}

// validateFrames rejects keyframes with null or negative durations. It runs
// once at load time so malformed exports never surface lazily mid-playback.
func validateFrames(clip, target, kind string, frames []dbFrame) error {
	for i, f := range frames {
		if f.Duration == nil {
			return fmt.Errorf("%w: clip %q, %s track of %q, keyframe %d has no duration",
				ErrMalformedKeyframeData, clip, kind, target, i)
		}
		if *f.Duration < 0 {
			return fmt.Errorf("%w: clip %q, %s track of %q, keyframe %d has negative duration %g",
				ErrMalformedKeyframeData, clip, kind, target, i, *f.Duration)
		}
	}
	return nil
}
