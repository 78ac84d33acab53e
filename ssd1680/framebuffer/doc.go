// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package framebuffer implements the pixel store used by the ssd1680 driver.
//
// A Framebuffer keeps pixels in the controller's physical layout (rows packed
// MSB-first, 1 or 2 bits per pixel) and exposes them in logical coordinates
// after applying one of four rotations:
//
//	Rotation  logical (x, y) -> physical (px, py)
//	0         (x, y)
//	90        (physW-1-y, x)
//	180       (physW-1-x, physH-1-y)
//	270       (y, physH-1-x)
//
// Two-bit buffers are split into the two 1-bit planes the controller compares
// during a grayscale refresh. Gray level v maps to plane A bit (v>>1)&1 and
// plane B bit v&1:
//
//	Level          Plane A (0x24)  Plane B (0x26)
//	0 Black        0               0
//	1 DarkGray     0               1
//	2 LightGray    1               0
//	3 White        1               1
//
// Framebuffer implements draw.Image so that image/draw and font rendering
// can target it directly.
package framebuffer
