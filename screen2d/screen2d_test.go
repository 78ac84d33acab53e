// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
)

// expected renders rows of pixels the way refresh does.
func expected(rows ...[]color.Gray) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString("\033[0m")
		for _, c := range row {
			b.WriteString(ansi256.Default.Block(color.NRGBA{R: c.Y, G: c.Y, B: c.Y, A: 0xFF}))
		}
		b.WriteString("\033[0m\n")
	}
	return b.String()
}

var (
	black = color.Gray{}
	white = color.Gray{Y: 0xFF}
)

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 3, Y: 2, W: &out})

	if err := d.Draw(image.Rect(0, 0, 1, 2), &image.Uniform{C: color.White}, image.Point{}); err != nil {
		t.Fatal(err)
	}

	want := expected(
		[]color.Gray{white, black, black},
		[]color.Gray{white, black, black},
	)
	if diff := cmp.Diff(out.String(), want); diff != "" {
		t.Errorf("Draw() output difference (-got +want):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 10, Y: 2, W: &out})

	// Row 0: pixels 0 and 9 white. Row 1: pixel 8 white.
	n, err := d.Write([]byte{0x80, 0x40, 0x00, 0x80})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("Write() = %d, want 4", n)
	}

	row0 := make([]color.Gray, 10)
	row1 := make([]color.Gray, 10)
	row0[0], row0[9], row1[8] = white, white, white
	if diff := cmp.Diff(out.String(), expected(row0, row1)); diff != "" {
		t.Errorf("Write() output difference (-got +want):\n%s", diff)
	}

	if _, err := d.Write([]byte{0x00}); err == nil {
		t.Error("Write() accepted a short plane")
	}
}

func TestStep(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 4, Y: 4, Step: 2, W: &out})

	if err := d.Draw(image.Rect(0, 0, 1, 1), &image.Uniform{C: color.White}, image.Point{}); err != nil {
		t.Fatal(err)
	}

	want := expected(
		[]color.Gray{white, black},
		[]color.Gray{black, black},
	)
	if diff := cmp.Diff(out.String(), want); diff != "" {
		t.Errorf("Draw() output difference (-got +want):\n%s", diff)
	}
	if got := d.String(); got != "Screen2D{4x4}" {
		t.Errorf("String() = %q", got)
	}
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 1, Y: 1, W: &out})
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(out.String(), "\033[0m\n"); diff != "" {
		t.Errorf("Halt() output difference (-got +want):\n%s", diff)
	}
}
