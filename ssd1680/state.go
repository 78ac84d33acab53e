// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"errors"
	"fmt"
	"time"
)

// State is the driver's view of the controller.
type State int

const (
	// Uninitialized means the controller has not been reset and configured,
	// or was reset to leave deep sleep.
	Uninitialized State = iota
	// Ready means the controller is configured and idle.
	Ready
	// Updating means a refresh sequence is in progress.
	Updating
	// Sleeping means the controller is in deep sleep. RAM content is kept
	// but a hardware reset is needed to talk to it again.
	Sleeping
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case Updating:
		return "Updating"
	case Sleeping:
		return "Sleeping"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists every allowed state change.
var transitions = map[State][]State{
	Uninitialized: {Ready},
	Ready:         {Updating, Sleeping, Uninitialized},
	Updating:      {Ready, Sleeping},
	Sleeping:      {Uninitialized},
}

// CanTransition reports whether the state machine allows going from one
// state to the other.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var (
	// ErrStateViolation is returned when an operation is not allowed in the
	// current state, including while another operation is in progress.
	ErrStateViolation = errors.New("ssd1680: operation not allowed in current state")
	// ErrTimeout is returned when the busy line stayed asserted longer than
	// the operation's bound.
	ErrTimeout = errors.New("ssd1680: busy timeout")
	// ErrConfig is returned for invalid options or requests. It is always
	// returned before any bus traffic.
	ErrConfig = errors.New("ssd1680: invalid configuration")
	// ErrNoReadLine is returned by register reads when no read connection
	// was set up.
	ErrNoReadLine = errors.New("ssd1680: no read connection")
	// ErrSleepFailed is wrapped in the error of a refresh that was drawn
	// but could not put the controller in deep sleep afterwards. The
	// previous frame is updated and the driver is Ready.
	ErrSleepFailed = errors.New("ssd1680: deep sleep failed after refresh")
)

// StateError describes a rejected operation.
type StateError struct {
	Op    string
	State State
	// InFlight is set when the operation was rejected because another one
	// had not completed.
	InFlight bool
}

func (e *StateError) Error() string {
	if e.InFlight {
		return fmt.Sprintf("ssd1680: %s: another operation is in progress (state %s)", e.Op, e.State)
	}
	return fmt.Sprintf("ssd1680: %s: not allowed in state %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrStateViolation
}

// TimeoutError describes a busy wait that exceeded its bound. The controller
// may still be working on the operation.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ssd1680: %s: busy for more than %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}
