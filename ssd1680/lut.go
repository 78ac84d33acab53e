// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import "fmt"

// LUTSize is the length of a waveform written to the LUT register.
const LUTSize = 153

// LUT contains the waveform that is used to program the display.
//
// The layout is five voltage selection rows of 12 bytes (one per source
// level), twelve timing groups of 7 bytes, then the frame rate and gate
// configuration bytes.
type LUT []byte

// Validate returns an error wrapping ErrConfig if the table has the wrong
// length.
func (l LUT) Validate() error {
	if len(l) != LUTSize {
		return fmt.Errorf("%w: LUT is %d bytes, want %d", ErrConfig, len(l), LUTSize)
	}
	return nil
}

// Voltages holds the driving voltages loaded alongside a custom waveform.
type Voltages struct {
	// VGH is the gate driving voltage register value.
	VGH byte
	// VSH1, VSH2 and VSL are the source driving voltage register values.
	VSH1, VSH2, VSL byte
	// VCOM is the common voltage register value.
	VCOM byte
}

// DefaultVoltages is the OTP default set: VGH 20V, VSH1 15V, VSH2 5V,
// VSL -15V and VCOM -2V.
var DefaultVoltages = Voltages{
	VGH:  0x17,
	VSH1: 0x41,
	VSH2: 0xA8,
	VSL:  0x32,
	VCOM: 0x50,
}

// LUT4Gray drives the four gray levels of a Gray4 framebuffer in about
// 3.4 seconds. Plane A is written to the black/white RAM and plane B to the
// red RAM; the source level for a pixel is selected by the (A, B) pair.
var LUT4Gray = LUT{
	// VS L0 to L4
	0x2A, 0x60, 0x15, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x20, 0x60, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x28, 0x60, 0x14, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x60, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	// TP/RP groups 0 to 11
	0x00, 0x02, 0x00, 0x05, 0x14, 0x00, 0x00,
	0x1E, 0x1E, 0x00, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x02, 0x00, 0x05, 0x14, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	// Frame rate, gate and source timing
	0x24, 0x22, 0x22, 0x22, 0x23, 0x32, 0x00, 0x00, 0x00,
}
