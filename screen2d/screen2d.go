// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a monochrome 2D display.Drawer that outputs
// to terminal (stdout) using ANSI color codes.
//
// Useful to check what an e-paper panel is going to show without waiting
// seconds for each refresh, or without the panel at all.
package screen2d

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	X, Y    int
	Palette *ansi256.Palette
	// Step keeps one pixel out of Step in each direction, so wide panels
	// fit in a terminal. Defaults to 1.
	Step int
	// W receives the output. Defaults to stdout.
	W io.Writer

	_ struct{}
}

// Dev is an e-paper panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	step    int
	palette ansi256.Palette

	img *image.Gray
	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	step := opts.Step
	if step < 1 {
		step = 1
	}
	return &Dev{
		w:       w,
		step:    step,
		palette: *p,
		img:     image.NewGray(image.Rect(0, 0, opts.X, opts.Y)),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("Screen2D{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Write accepts a 1 bit per pixel plane, rows packed MSB first and padded
// to a whole byte, 0 being black. This is the layout of the controller RAM.
func (d *Dev) Write(plane []byte) (int, error) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	stride := (w + 7) / 8
	if len(plane) != stride*h {
		return 0, errors.New("screen2d: invalid plane length")
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			if plane[y*stride+x/8]&(0x80>>(x%8)) != 0 {
				v = 0xFF
			}
			d.img.Pix[y*d.img.Stride+x] = v
		}
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(plane), nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.img, r, src, sp, draw.Src)
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	r := d.img.Rect
	for y := r.Min.Y; y < r.Max.Y; y += d.step {
		_, _ = d.buf.WriteString("\033[0m")
		for x := r.Min.X; x < r.Max.X; x += d.step {
			_, _ = io.WriteString(&d.buf, d.palette.Block(toNRGBA(d.img.GrayAt(x, y))))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// toNRGBA returns the opaque color of a gray level, as used by the palette.
func toNRGBA(g color.Gray) color.NRGBA {
	return color.NRGBA{R: g.Y, G: g.Y, B: g.Y, A: 0xFF}
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
