// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epaper defines the operations shared by e-paper controller
// drivers.
//
// The controller drivers live in subpackages; ssd1680 is the first one. A
// driver owns a framebuffer in logical coordinates, the copy of the
// previous frame held by the controller RAM, and a state machine that
// rejects calls out of order.
//
// Typical refresh durations are in Typical so callers can pick a mode for
// their update rate.
package epaper
