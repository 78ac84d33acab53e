// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ErrConfig is returned for invalid construction parameters.
var ErrConfig = errors.New("framebuffer: invalid configuration")

// Depth is the number of bits stored per pixel.
type Depth int

const (
	// Mono stores one bit per pixel, 0 is black and 1 is white.
	Mono Depth = 1
	// Gray4 stores two bits per pixel, see Black through White.
	Gray4 Depth = 2
)

// Rotation is the clockwise rotation between logical and physical
// coordinates, in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Gray levels. A Mono buffer treats any non-zero value as white.
const (
	Black     byte = 0
	DarkGray  byte = 1
	LightGray byte = 2
	White     byte = 3
)

// Framebuffer is a rotated 1 or 2 bits per pixel image stored in the
// controller's physical layout.
type Framebuffer struct {
	physW, physH int
	depth        Depth
	rotation     Rotation
	rowBytes     int
	buf          []byte
}

// New allocates a cleared (black) framebuffer for a panel of the given
// physical size.
func New(physW, physH int, depth Depth, rotation Rotation) (*Framebuffer, error) {
	if physW <= 0 || physH <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrConfig, physW, physH)
	}
	f := &Framebuffer{physW: physW, physH: physH}
	if err := f.Reconfigure(depth, rotation); err != nil {
		return nil, err
	}
	return f, nil
}

// Reconfigure changes depth and rotation. The backing buffer is always
// reallocated, so the previous content is lost.
func (f *Framebuffer) Reconfigure(depth Depth, rotation Rotation) error {
	switch depth {
	case Mono, Gray4:
	default:
		return fmt.Errorf("%w: depth %d", ErrConfig, depth)
	}
	switch rotation {
	case Rotate0, Rotate90, Rotate180, Rotate270:
	default:
		return fmt.Errorf("%w: rotation %d", ErrConfig, rotation)
	}

	f.depth = depth
	f.rotation = rotation
	f.rowBytes = (f.physW*int(depth) + 7) / 8
	f.buf = make([]byte, f.rowBytes*f.physH)
	return nil
}

// Depth returns the number of bits per pixel.
func (f *Framebuffer) Depth() Depth {
	return f.depth
}

// Rotation returns the configured rotation.
func (f *Framebuffer) Rotation() Rotation {
	return f.rotation
}

// Width returns the logical width.
func (f *Framebuffer) Width() int {
	if f.swapped() {
		return f.physH
	}
	return f.physW
}

// Height returns the logical height.
func (f *Framebuffer) Height() int {
	if f.swapped() {
		return f.physW
	}
	return f.physH
}

// PhysicalSize returns the unrotated panel dimensions.
func (f *Framebuffer) PhysicalSize() (width, height int) {
	return f.physW, f.physH
}

// RowBytes returns the number of bytes in one physical row.
func (f *Framebuffer) RowBytes() int {
	return f.rowBytes
}

// Buffer returns the raw backing bytes. The slice is shared with the
// framebuffer.
func (f *Framebuffer) Buffer() []byte {
	f.check()
	return f.buf
}

// String implements fmt.Stringer.
func (f *Framebuffer) String() string {
	return fmt.Sprintf("framebuffer.Framebuffer{%dx%d, depth %d, rotation %d}", f.Width(), f.Height(), f.depth, f.rotation)
}

func (f *Framebuffer) swapped() bool {
	return f.rotation == Rotate90 || f.rotation == Rotate270
}

// check panics when the buffer no longer matches its computed size. This can
// only happen through a programming error.
func (f *Framebuffer) check() {
	if want := f.rowBytes * f.physH; len(f.buf) != want {
		panic(fmt.Sprintf("framebuffer: buffer length %d, want %d", len(f.buf), want))
	}
}

// ToPhysical maps logical coordinates to physical ones.
func (f *Framebuffer) ToPhysical(x, y int) (px, py int) {
	switch f.rotation {
	case Rotate90:
		return f.physW - 1 - y, x
	case Rotate180:
		return f.physW - 1 - x, f.physH - 1 - y
	case Rotate270:
		return y, f.physH - 1 - x
	}
	return x, y
}

// ToLogical is the inverse of ToPhysical.
func (f *Framebuffer) ToLogical(px, py int) (x, y int) {
	switch f.rotation {
	case Rotate90:
		return py, f.physW - 1 - px
	case Rotate180:
		return f.physW - 1 - px, f.physH - 1 - py
	case Rotate270:
		return f.physH - 1 - py, px
	}
	return px, py
}

// PhysicalRect maps a logical rectangle to the physical rectangle covering
// the same pixels. The rectangle is clipped to the framebuffer bounds first.
func (f *Framebuffer) PhysicalRect(r image.Rectangle) image.Rectangle {
	r = r.Intersect(f.Bounds())
	if r.Empty() {
		return image.Rectangle{}
	}
	x0, y0 := f.ToPhysical(r.Min.X, r.Min.Y)
	x1, y1 := f.ToPhysical(r.Max.X-1, r.Max.Y-1)
	return image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1)
}

func (f *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width() && y < f.Height()
}

// SetPixel sets the pixel at logical coordinates. Out of range coordinates
// are ignored.
func (f *Framebuffer) SetPixel(x, y int, v byte) {
	if !f.inBounds(x, y) {
		return
	}
	px, py := f.ToPhysical(x, y)
	f.setPhys(px, py, v)
}

// Pixel returns the pixel at logical coordinates, or 0 when out of range.
func (f *Framebuffer) Pixel(x, y int) byte {
	if !f.inBounds(x, y) {
		return 0
	}
	px, py := f.ToPhysical(x, y)
	return f.getPhys(px, py)
}

func (f *Framebuffer) setPhys(px, py int, v byte) {
	if f.depth == Mono {
		idx := py*f.rowBytes + px>>3
		mask := byte(0x80) >> (px & 7)
		if v != 0 {
			f.buf[idx] |= mask
		} else {
			f.buf[idx] &^= mask
		}
		return
	}
	idx := py*f.rowBytes + px>>2
	shift := 6 - 2*(px&3)
	f.buf[idx] = f.buf[idx]&^(0b11<<shift) | (v&0b11)<<shift
}

func (f *Framebuffer) getPhys(px, py int) byte {
	if f.depth == Mono {
		return f.buf[py*f.rowBytes+px>>3] >> (7 - px&7) & 1
	}
	return f.buf[py*f.rowBytes+px>>2] >> (6 - 2*(px&3)) & 0b11
}

// fillByte returns a byte holding v in every pixel slot.
func (f *Framebuffer) fillByte(v byte) byte {
	if f.depth == Mono {
		if v != 0 {
			return 0xFF
		}
		return 0x00
	}
	return (v & 0b11) * 0x55
}

// Clear sets every pixel, including row padding, to v.
func (f *Framebuffer) Clear(v byte) {
	fill := f.fillByte(v)
	for i := range f.buf {
		f.buf[i] = fill
	}
}

// FillSpan sets length pixels starting at (x, y) along the logical X axis.
func (f *Framebuffer) FillSpan(x, y, length int, v byte) {
	f.FillRect(x, y, length, 1, v)
}

// FillRect sets all pixels of a logical rectangle. Whole bytes are written
// where a physical row covers them completely; the ragged ends are set pixel
// by pixel.
func (f *Framebuffer) FillRect(x, y, w, h int, v byte) {
	if w <= 0 || h <= 0 {
		return
	}
	pr := f.PhysicalRect(image.Rect(x, y, x+w, y+h))
	for py := pr.Min.Y; py < pr.Max.Y; py++ {
		f.fillRun(pr.Min.X, pr.Max.X, py, v)
	}
}

// fillRun fills the physical pixels [px0, px1) of row py.
func (f *Framebuffer) fillRun(px0, px1, py int, v byte) {
	ppb := 8 / int(f.depth)
	row := py * f.rowBytes
	px := px0
	for ; px < px1 && px%ppb != 0; px++ {
		f.setPhys(px, py, v)
	}
	if fill := f.fillByte(v); px+ppb <= px1 {
		start, end := row+px/ppb, row+px1/ppb
		for i := start; i < end; i++ {
			f.buf[i] = fill
		}
		px = px1 / ppb * ppb
	}
	for ; px < px1; px++ {
		f.setPhys(px, py, v)
	}
}

// ColorModel implements image.Image.
func (f *Framebuffer) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements image.Image and returns the logical bounds.
func (f *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width(), f.Height())
}

// At implements image.Image.
func (f *Framebuffer) At(x, y int) color.Color {
	v := f.Pixel(x, y)
	if f.depth == Mono {
		return color.Gray{Y: v * 0xFF}
	}
	return color.Gray{Y: v * 0x55}
}

// Set implements draw.Image.
func (f *Framebuffer) Set(x, y int, c color.Color) {
	g := color.GrayModel.Convert(c).(color.Gray)
	if f.depth == Mono {
		if g.Y >= 0x80 {
			f.SetPixel(x, y, 1)
		} else {
			f.SetPixel(x, y, 0)
		}
		return
	}
	f.SetPixel(x, y, byte((int(g.Y)+0x2A)/0x55))
}

var _ draw.Image = (*Framebuffer)(nil)
