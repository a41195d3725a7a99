// Package timeline keeps the play-head position of the lesson video and maps
// it onto the checkpoint timeline.
package timeline

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/lesson-studio/internal/model"
)

// DefaultCheckpointType is the type a new checkpoint starts with.
const DefaultCheckpointType = model.CheckpointVocab

// DefaultMaxStaleEvents bounds how many progress events in a row may be
// dropped while waiting for the player to reach a seek target.
const DefaultMaxStaleEvents = 20

// DefaultSeekTolerance is used when Options leaves SeekTolerance unset.
const DefaultSeekTolerance = 500 * time.Millisecond

// Player accepts seek commands. It is the only timing source the controller
// trusts; its progress and ready events are fed in through OnProgress and
// OnReady.
type Player interface {
	SeekTo(sec float64)
}

// Opener opens the checkpoint editor for a new checkpoint.
type Opener interface {
	OpenNew(timeSec float64, t model.CheckpointType) error
}

// Options configures a Controller.
type Options struct {
	// SeekTolerance is how far a progress event may be from the last seek
	// target before it is treated as stale.
	SeekTolerance  time.Duration
	MaxStaleEvents int
	Logger         *zap.Logger
}

// Controller is driven by one stream of player events and is not safe for
// concurrent use.
type Controller struct {
	player    Player
	opener    Opener
	tolerance float64
	maxStale  int
	logger    *zap.Logger

	current  float64
	duration float64

	seekTarget *float64
	stale      int
}

// New returns a controller at time zero with an unknown duration.
func New(player Player, opener Opener, opts Options) *Controller {
	c := &Controller{
		player:    player,
		opener:    opener,
		tolerance: opts.SeekTolerance.Seconds(),
		maxStale:  opts.MaxStaleEvents,
		logger:    opts.Logger,
	}
	if c.tolerance <= 0 {
		c.tolerance = DefaultSeekTolerance.Seconds()
	}
	if c.maxStale <= 0 {
		c.maxStale = DefaultMaxStaleEvents
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// OnReady records the total duration reported by the player.
func (c *Controller) OnReady(durationSec float64) {
	if durationSec < 0 || math.IsNaN(durationSec) {
		durationSec = 0
	}
	c.duration = durationSec
	c.current = c.clamp(c.current)
}

// OnProgress applies a progress event. While a seek is pending, events too
// far from the seek target are dropped so the play-head does not jump back
// to where the player was before the seek.
func (c *Controller) OnProgress(sec float64) {
	if math.IsNaN(sec) {
		return
	}
	if c.seekTarget != nil {
		if math.Abs(sec-*c.seekTarget) > c.tolerance && c.stale < c.maxStale {
			c.stale++
			c.logger.Debug("dropping stale progress event",
				zap.Float64("reported", sec),
				zap.Float64("seek_target", *c.seekTarget))
			return
		}
		c.seekTarget = nil
		c.stale = 0
	}
	c.current = c.clamp(sec)
}

// SeekTo clamps target into the video, commands the player and moves the
// play-head right away.
func (c *Controller) SeekTo(targetSec float64) float64 {
	if math.IsNaN(targetSec) {
		targetSec = 0
	}
	t := c.clamp(targetSec)
	c.player.SeekTo(t)
	c.current = t
	c.seekTarget = &t
	c.stale = 0
	return t
}

// JumpTo seeks to the checkpoint's exact time.
func (c *Controller) JumpTo(cp model.Checkpoint) float64 {
	return c.SeekTo(cp.TimeSec)
}

// PositionFraction places a time on the timeline in [0, 1]. It is zero while
// the duration is unknown.
func (c *Controller) PositionFraction(timeSec float64) float64 {
	return Fraction(timeSec, c.duration)
}

// RequestNewCheckpointAt opens the editor for a new checkpoint. With no
// explicit time the play-head is used, truncated to whole seconds.
func (c *Controller) RequestNewCheckpointAt(timeSec *float64) (float64, error) {
	at := math.Trunc(c.current)
	if timeSec != nil {
		at = *timeSec
	}
	if err := c.opener.OpenNew(at, DefaultCheckpointType); err != nil {
		return 0, fmt.Errorf("open editor at %.2fs: %w", at, err)
	}
	return at, nil
}

// CurrentTime returns the play-head position in seconds.
func (c *Controller) CurrentTime() float64 { return c.current }

// Duration returns the video duration, zero until the player is ready.
func (c *Controller) Duration() float64 { return c.duration }

// clamp bounds sec to [0, duration]. Before the duration is known only the
// lower bound applies.
func (c *Controller) clamp(sec float64) float64 {
	if sec < 0 {
		return 0
	}
	if c.duration > 0 && sec > c.duration {
		return c.duration
	}
	return sec
}

// Fraction is the single placement rule for the play-head and checkpoint
// markers: timeSec/durationSec clamped to [0, 1], or 0 without a duration.
func Fraction(timeSec, durationSec float64) float64 {
	if durationSec <= 0 || math.IsNaN(timeSec) {
		return 0
	}
	return math.Max(0, math.Min(1, timeSec/durationSec))
}
