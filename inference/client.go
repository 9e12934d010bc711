package inference

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/depthcam/common"
)

// Mode selects how frames are scheduled on the two request slots.
type Mode int

const (
	// ModeAsync submits to NEXT, waits on CURRENT (the previous frame), then swaps.
	ModeAsync Mode = iota
	// ModeSync submits to CURRENT and waits on it.
	ModeSync
)

func (m Mode) String() string {
	if m == ModeSync {
		return "sync"
	}
	return "async"
}

// ParseMode converts "sync" or "async" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "async":
		return ModeAsync, nil
	case "sync":
		return ModeSync, nil
	default:
		return ModeAsync, errors.Errorf("unknown inference mode %q", s)
	}
}

// FailurePolicy decides what happens when a request fails.
type FailurePolicy string

const (
	// FailureSkip drops the failed frame's detections and keeps going.
	FailureSkip FailurePolicy = "skip"
	// FailureStop returns the error to the caller.
	FailureStop FailurePolicy = "fail"
)

// ParseFailurePolicy validates a policy name. The empty string selects FailureSkip.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(s)) {
	case "", FailureSkip:
		return FailureSkip, nil
	case FailureStop:
		return FailureStop, nil
	default:
		return FailureSkip, errors.Errorf("unknown failure policy %q", s)
	}
}

// Result is the outcome of one Infer call.
type Result struct {
	// Detections decoded from the slot that was read. Empty when OK is false.
	Detections []common.Detection
	// Mode the call ran in.
	Mode Mode
	// OK is false when no result was available for this frame.
	OK bool
	// Elapsed is the submit-to-result time. Only measured in sync mode.
	Elapsed time.Duration
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Mode   Mode
	Policy FailurePolicy
	Logger *zap.SugaredLogger
}

// Client drives an Engine through the ping-pong slot scheme.
type Client struct {
	engine Engine
	slots  PingPong
	mode   Mode
	policy FailurePolicy
	logger *zap.SugaredLogger
}

// NewClient wraps an engine. The slot state starts at CURRENT=0, NEXT=1.
func NewClient(engine Engine, opts ClientOptions) *Client {
	if opts.Policy == "" {
		opts.Policy = FailureSkip
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	return &Client{
		engine: engine,
		slots:  NewPingPong(),
		mode:   opts.Mode,
		policy: opts.Policy,
		logger: opts.Logger,
	}
}

// Mode returns the mode the next Infer call will use.
func (c *Client) Mode() Mode {
	return c.mode
}

// SetMode changes the mode used from the next Infer call on.
func (c *Client) SetMode(m Mode) {
	c.mode = m
}

// Toggle flips between sync and async and returns the new mode.
func (c *Client) Toggle() Mode {
	if c.mode == ModeSync {
		c.mode = ModeAsync
	} else {
		c.mode = ModeSync
	}
	return c.mode
}

// Slots returns the current ping-pong state.
func (c *Client) Slots() PingPong {
	return c.slots
}

// Engine returns the wrapped engine.
func (c *Client) Engine() Engine {
	return c.engine
}

// Infer submits one frame and reads one result.
//
// In sync mode the result belongs to input. In async mode it belongs to the frame submitted
// by the previous call, and the first async call after start has no result (OK false).
//
// Arguments:
// - input: The preprocessed (1, 3, H, W) tensor.
//
// Returns:
// - The result for this iteration.
// - error only under FailureStop, when submit or wait failed.
func (c *Client) Infer(input *tensor.Dense) (Result, error) {
	mode := c.mode
	res := Result{Mode: mode}

	submitSlot := c.slots.Current()
	if mode == ModeAsync {
		submitSlot = c.slots.Next()
	}

	start := time.Now()
	if err := c.engine.Submit(submitSlot, input); err != nil {
		if c.policy == FailureStop {
			return res, errors.Wrapf(err, "failed to submit to slot %d", submitSlot)
		}
		c.logger.Warnw("Submit failed, skipping frame", "slot", submitSlot, "error", err)
	}

	detections, err := c.engine.Wait(c.slots.Current())
	if mode == ModeSync {
		res.Elapsed = time.Since(start)
	}

	switch {
	case err == nil:
		res.Detections = detections
		res.OK = true
	case errors.Is(err, ErrSlotIdle):
		// Nothing submitted to CURRENT yet: the first async frame.
	case c.policy == FailureStop:
		return res, errors.Wrapf(err, "failed to wait on slot %d", c.slots.Current())
	default:
		c.logger.Debugw("Wait failed, skipping frame", "slot", c.slots.Current(), "error", err)
	}

	if mode == ModeAsync {
		c.slots.Swap()
	}

	return res, nil
}
