// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"fmt"
	"sync"
)

// PlaneBits returns the plane A and plane B bits for a gray level.
func PlaneBits(level byte) (a, b byte) {
	return level >> 1 & 1, level & 1
}

// planeTables translates one byte of 2-bit pixels (four pixels) into a
// nibble per plane.
type planeTables struct {
	a, b [256]byte
}

var (
	planesOnce sync.Once
	planes     *planeTables
)

// planeTable returns the conversion tables, building them on first use.
func planeTable() *planeTables {
	planesOnce.Do(func() {
		planes = buildPlaneTables()
	})
	return planes
}

func buildPlaneTables() *planeTables {
	t := &planeTables{}
	for i := 0; i < 256; i++ {
		for p := 0; p < 4; p++ {
			a, b := PlaneBits(byte(i) >> (6 - 2*p) & 0b11)
			t.a[i] |= a << (3 - p)
			t.b[i] |= b << (3 - p)
		}
	}
	return t
}

// PlaneSize returns the length in bytes of one 1-bit hardware plane.
func (f *Framebuffer) PlaneSize() int {
	return (f.physW + 7) / 8 * f.physH
}

// HardwarePlanes returns the content in the controller's plane form. A Mono
// buffer is returned as is with a nil b. A Gray4 buffer is split into two
// newly allocated planes.
func (f *Framebuffer) HardwarePlanes() (a, b []byte) {
	f.check()
	if f.depth == Mono {
		return f.buf, nil
	}
	a = make([]byte, f.PlaneSize())
	b = make([]byte, f.PlaneSize())
	f.SplitPlanes(a, b)
	return a, b
}

// SplitPlanes writes the two grayscale planes into a and b, each PlaneSize
// bytes long. A Mono buffer yields identical planes, so its pixels render as
// black or white.
func (f *Framebuffer) SplitPlanes(a, b []byte) {
	f.check()
	f.checkPlane(a)
	f.checkPlane(b)
	if f.depth == Mono {
		copy(a, f.buf)
		copy(b, f.buf)
		return
	}
	t := planeTable()
	f.convertRows(a, &t.a)
	f.convertRows(b, &t.b)
}

// MonoPlane writes the 1-bit form into dst, PlaneSize bytes long. Gray
// levels LightGray and White become white. This is plane A of SplitPlanes.
func (f *Framebuffer) MonoPlane(dst []byte) {
	f.check()
	f.checkPlane(dst)
	if f.depth == Mono {
		copy(dst, f.buf)
		return
	}
	f.convertRows(dst, &planeTable().a)
}

func (f *Framebuffer) checkPlane(p []byte) {
	if len(p) != f.PlaneSize() {
		panic(fmt.Sprintf("framebuffer: plane length %d, want %d", len(p), f.PlaneSize()))
	}
}

// convertRows packs the 2-bit rows through lut, two source bytes per output
// byte.
func (f *Framebuffer) convertRows(dst []byte, lut *[256]byte) {
	outRow := (f.physW + 7) / 8
	for y := 0; y < f.physH; y++ {
		src := f.buf[y*f.rowBytes : (y+1)*f.rowBytes]
		out := dst[y*outRow : (y+1)*outRow]
		for j := range out {
			hi := lut[src[2*j]]
			var lo byte
			if 2*j+1 < len(src) {
				lo = lut[src[2*j+1]]
			}
			out[j] = hi<<4 | lo
		}
	}
}
