// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"fmt"
	"image"
	"time"
)

// Mode selects the waveform and the RAM usage of a refresh.
type Mode int

const (
	// Full redraws every pixel with the OTP waveform, then hibernates.
	Full Mode = iota
	// FullFast is Full with the waveform of a hot panel, then hibernates.
	FullFast
	// Partial only drives pixels that differ from the previous frame.
	Partial
	// Region is Partial restricted to a rectangle.
	Region
	// FourGray draws the four levels of a Gray4 framebuffer with LUT4Gray.
	FourGray
	// CustomLUT draws the two planes with Opts.Waveform.
	CustomLUT
)

type modeInfo struct {
	name      string
	seq       byte
	border    byte
	gray      bool
	hibernate bool
}

var modes = [...]modeInfo{
	Full:      {name: "full refresh", seq: seqFull, border: borderFollowLUT, hibernate: true},
	FullFast:  {name: "fast full refresh", seq: seqFullFast, border: borderFollowLUT, hibernate: true},
	Partial:   {name: "partial refresh", seq: seqPartial, border: borderVCOM},
	Region:    {name: "region refresh", seq: seqPartial, border: borderVCOM},
	FourGray:  {name: "grayscale refresh", seq: seqCustomLUT, border: borderFollowLUT, gray: true},
	CustomLUT: {name: "custom waveform refresh", seq: seqCustomLUT, border: borderFollowLUT, gray: true},
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modes) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modes[m].name
}

// Request describes one refresh. Rect and Rects are in logical coordinates
// and only used by Region: every non-empty rectangle is written to the
// controller and the panel is updated once.
type Request struct {
	Mode  Mode
	Rect  image.Rectangle
	Rects []image.Rectangle
}

// FullRefresh redraws the whole panel and hibernates.
//
// An error wrapping ErrSleepFailed means the frame was drawn and only the
// deep sleep that follows failed; the driver is then Ready.
func (d *Dev) FullRefresh() error {
	return d.Refresh(Request{Mode: Full})
}

// FullFastRefresh redraws the whole panel with the shorter waveform and
// hibernates.
func (d *Dev) FullFastRefresh() error {
	return d.Refresh(Request{Mode: FullFast})
}

// PartialRefresh updates the pixels that changed since the last refresh.
func (d *Dev) PartialRefresh() error {
	return d.Refresh(Request{Mode: Partial})
}

// RegionRefresh updates the pixels of r, in logical coordinates, that
// changed since the last refresh. r is widened to whole bytes of the
// physical rows.
func (d *Dev) RegionRefresh(r image.Rectangle) error {
	return d.Refresh(Request{Mode: Region, Rect: r})
}

// RegionsRefresh updates several regions with a single panel update.
func (d *Dev) RegionsRefresh(rs ...image.Rectangle) error {
	return d.Refresh(Request{Mode: Region, Rects: rs})
}

// GrayRefresh draws the framebuffer in four gray levels.
func (d *Dev) GrayRefresh() error {
	return d.Refresh(Request{Mode: FourGray})
}

// CustomRefresh draws the framebuffer with Opts.Waveform.
func (d *Dev) CustomRefresh() error {
	return d.Refresh(Request{Mode: CustomLUT})
}

// Refresh sends the framebuffer to the panel.
//
// A sleeping controller is reset first. Partial and Region requests become
// Full when the panel has no full refresh to compare against, or when
// Opts.PartialLimit is reached. The previous frame is only replaced once
// the controller reports completion.
func (d *Dev) Refresh(req Request) error {
	if err := d.checkRequest(req); err != nil {
		return err
	}
	state, err := d.acquire(req.Mode.String(), Ready, Sleeping)
	if err != nil {
		return err
	}
	defer d.release()
	if state == Sleeping {
		if err := d.initLocked(); err != nil {
			return err
		}
	}
	return d.refreshLocked(d.effectiveMode(req.Mode), req)
}

func (d *Dev) checkRequest(req Request) error {
	switch req.Mode {
	case Full, FullFast, Partial, FourGray:
	case Region:
		n := 0
		for i := -1; i < len(req.Rects); i++ {
			r := req.Rect
			if i >= 0 {
				r = req.Rects[i]
			}
			if r.Empty() {
				continue
			}
			if d.fb.PhysicalRect(r).Empty() {
				return fmt.Errorf("%w: region %v outside %v", ErrConfig, r, d.fb.Bounds())
			}
			n++
		}
		if n == 0 {
			return fmt.Errorf("%w: no region to refresh", ErrConfig)
		}
	case CustomLUT:
		if d.opts.Waveform == nil {
			return fmt.Errorf("%w: no custom waveform configured", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown refresh mode %d", ErrConfig, int(req.Mode))
	}
	return nil
}

func (d *Dev) effectiveMode(m Mode) Mode {
	if m != Partial && m != Region {
		return m
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.basemap || (d.opts.PartialLimit > 0 && d.partials >= d.opts.PartialLimit) {
		return Full
	}
	return m
}

func (d *Dev) timeout(m Mode) time.Duration {
	switch m {
	case Full:
		return d.opts.Timeouts.Full
	case FullFast:
		return d.opts.Timeouts.FullFast
	case Partial, Region:
		return d.opts.Timeouts.Partial
	}
	return d.opts.Timeouts.Gray
}

func (d *Dev) waveform(m Mode) LUT {
	if m == CustomLUT {
		return d.opts.Waveform
	}
	return LUT4Gray
}

// stride is the length of one plane row.
func (d *Dev) stride() int {
	return (d.opts.Width + 7) / 8
}

// regionArea converts a logical rectangle to a RAM window.
func (d *Dev) regionArea(r image.Rectangle) image.Rectangle {
	pr := d.fb.PhysicalRect(r)
	return image.Rect(pr.Min.X/8, pr.Min.Y, (pr.Max.X+7)/8, pr.Max.Y)
}

func (d *Dev) refreshLocked(m Mode, req Request) error {
	info := modes[m]
	area := fullArea(&d.opts)
	if info.gray {
		d.fb.SplitPlanes(d.cur, d.aux)
	} else {
		d.fb.MonoPlane(d.cur)
	}

	d.transition(Updating)
	eh := d.handler()
	configureBorder(eh, info.border)
	if m == FullFast {
		writeFakeTemperature(eh)
	}
	switch {
	case info.gray:
		writeRAM(eh, writeRAMBW, area, d.cur)
		writeRAM(eh, writeRAMRed, area, d.aux)
		loadWaveform(eh, d.waveform(m), &d.opts.Voltages)
	case m == Region:
		d.writeRegion(eh, req.Rect)
		for _, r := range req.Rects {
			d.writeRegion(eh, r)
		}
	default:
		writeRAM(eh, writeRAMRed, area, d.prev)
		writeRAM(eh, writeRAMBW, area, d.cur)
	}
	updateDisplay(eh, info.seq, info.name, d.timeout(m))
	if eh.err != nil {
		d.transition(Ready)
		return opError(info.name, eh.err)
	}

	d.commit(m, req)
	return d.endUpdate(info.name, info.hibernate)
}

// writeRegion writes the previous then the current rows of r.
func (d *Dev) writeRegion(eh *errorHandler, r image.Rectangle) {
	if r.Empty() {
		return
	}
	area := d.regionArea(r)
	stride := d.stride()
	writeRAM(eh, writeRAMRed, area, extractRegion(d.regionPrev, d.prev, stride, area))
	writeRAM(eh, writeRAMBW, area, extractRegion(d.regionCur, d.cur, stride, area))
}

// commit records a completed refresh.
func (d *Dev) commit(m Mode, req Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m == Region {
		d.commitRegion(req.Rect)
		for _, r := range req.Rects {
			d.commitRegion(r)
		}
	} else {
		copy(d.prev, d.cur)
	}
	switch m {
	case Full, FullFast:
		d.basemap = true
		d.partials = 0
	case Partial, Region:
		d.partials++
	default:
		// Gray levels are not a reference the OTP partial waveform can
		// compare against.
		d.basemap = false
		d.partials = 0
	}
}

// commitRegion copies the rows of r from the current plane to the previous
// one.
func (d *Dev) commitRegion(r image.Rectangle) {
	if r.Empty() {
		return
	}
	area := d.regionArea(r)
	stride := d.stride()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		off := y * stride
		copy(d.prev[off+area.Min.X:off+area.Max.X], d.cur[off+area.Min.X:off+area.Max.X])
	}
}

// extractRegion copies the rows of area out of plane into dst.
func extractRegion(dst, plane []byte, stride int, area image.Rectangle) []byte {
	n := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		off := y*stride + area.Min.X
		n += copy(dst[n:], plane[off:off+area.Dx()])
	}
	return dst[:n]
}
