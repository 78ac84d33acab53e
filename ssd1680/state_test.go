// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]State]bool{
		{Uninitialized, Ready}:    true,
		{Ready, Updating}:         true,
		{Ready, Sleeping}:         true,
		{Ready, Uninitialized}:    true,
		{Updating, Ready}:         true,
		{Updating, Sleeping}:      true,
		{Sleeping, Uninitialized}: true,
	}
	states := []State{Uninitialized, Ready, Updating, Sleeping}
	for _, from := range states {
		for _, to := range states {
			if got, want := CanTransition(from, to), allowed[[2]State{from, to}]; got != want {
				t.Errorf("CanTransition(%s, %s) = %t, want %t", from, to, got, want)
			}
		}
	}
}

func TestInvalidTransitionPanics(t *testing.T) {
	h := newHarness(t, nil)
	defer func() {
		if recover() == nil {
			t.Error("transition(Updating) from Uninitialized did not panic")
		}
	}()
	h.d.transition(Updating)
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Uninitialized: "Uninitialized",
		Ready:         "Ready",
		Updating:      "Updating",
		Sleeping:      "Sleeping",
		State(9):      "State(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestErrors(t *testing.T) {
	for _, tc := range []struct {
		err    error
		target error
		want   string
	}{
		{
			err:    &StateError{Op: "partial refresh", State: Uninitialized},
			target: ErrStateViolation,
			want:   "ssd1680: partial refresh: not allowed in state Uninitialized",
		},
		{
			err:    &StateError{Op: "init", State: Updating, InFlight: true},
			target: ErrStateViolation,
			want:   "ssd1680: init: another operation is in progress (state Updating)",
		},
		{
			err:    &TimeoutError{Op: "full refresh", Timeout: 1500 * time.Millisecond},
			target: ErrTimeout,
			want:   "ssd1680: full refresh: busy for more than 1.5s",
		},
	} {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
		if !errors.Is(tc.err, tc.target) {
			t.Errorf("errors.Is(%v, %v) = false", tc.err, tc.target)
		}
	}
}
