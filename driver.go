// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epaper

import (
	"image"
	"time"
)

// Driver is implemented by e-paper controller drivers.
type Driver interface {
	// Init resets the controller and configures it.
	Init() error
	// FullRefresh redraws every pixel. It clears ghosting and is the slowest
	// mode.
	FullRefresh() error
	// PartialRefresh only drives the pixels that changed since the last
	// refresh.
	PartialRefresh() error
	// RegionRefresh is PartialRefresh restricted to r, in logical
	// coordinates.
	RegionRefresh(r image.Rectangle) error
	// Hibernate enters the lowest power state.
	Hibernate() error
	// Wake leaves Hibernate.
	Wake() error
}

// Timing lists how long the panel is busy for each operation.
type Timing struct {
	Full      time.Duration
	FullFast  time.Duration
	Partial   time.Duration
	FourGray  time.Duration
	CustomLUT time.Duration
	PowerOn   time.Duration
	PowerOff  time.Duration
}

// Typical is measured on a 2.9" 128x296 panel at room temperature. Partial
// also applies to region refreshes.
var Typical = Timing{
	Full:      1500 * time.Millisecond,
	FullFast:  2000 * time.Millisecond,
	Partial:   360 * time.Millisecond,
	FourGray:  3360 * time.Millisecond,
	CustomLUT: 3000 * time.Millisecond,
	PowerOn:   96 * time.Millisecond,
	PowerOff:  143 * time.Millisecond,
}
