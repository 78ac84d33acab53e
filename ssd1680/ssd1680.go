// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/GermanBionicSystems/epaper"
	"github.com/GermanBionicSystems/epaper/ssd1680/framebuffer"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/rpi"
)

// Timeouts bounds every busy wait. A zero field uses the matching
// DefaultTimeouts value.
type Timeouts struct {
	Full     time.Duration
	FullFast time.Duration
	// Partial also applies to Region.
	Partial time.Duration
	// Gray applies to FourGray and CustomLUT.
	Gray time.Duration
	// Command applies to reset, init and auto write.
	Command time.Duration
}

// DefaultTimeouts are the busy wait bounds. epaper.Typical lists the usual
// durations.
var DefaultTimeouts = Timeouts{
	Full:     1500 * time.Millisecond,
	FullFast: 2 * time.Second,
	Partial:  400 * time.Millisecond,
	Gray:     3500 * time.Millisecond,
	Command:  500 * time.Millisecond,
}

// Opts defines the panel geometry and driver behavior.
type Opts struct {
	// Width and Height are the physical panel size in pixels, Width along
	// the source lines.
	Width  int
	Height int
	// Depth and Rotation configure the framebuffer. Depth defaults to
	// framebuffer.Mono.
	Depth    framebuffer.Depth
	Rotation framebuffer.Rotation

	Timeouts      Timeouts
	ResetPulse    time.Duration
	ResetRecovery time.Duration
	// BusyPoll is the delay between two busy line reads. Zero keeps the
	// Transport default.
	BusyPoll time.Duration

	// PartialLimit forces a full refresh after that many consecutive partial
	// refreshes to clear ghosting. Zero disables the limit.
	PartialLimit int

	// Waveform is the table used by CustomLUT refreshes. It must be LUTSize
	// bytes long when set.
	Waveform LUT
	// Voltages are loaded with every custom waveform. A zero value uses
	// DefaultVoltages.
	Voltages Voltages

	InvertBW  bool
	InvertRed bool

	// StateChanged is called after each state transition.
	StateChanged func(from, to State)
	// BusyChanged is called when the driver starts and stops waiting on the
	// busy line.
	BusyChanged func(busy bool)
}

// GDEY029T94 contains the configuration for the Good Display 2.9"
// black/white panel.
var GDEY029T94 = Opts{
	Width:         128,
	Height:        296,
	Depth:         framebuffer.Mono,
	Rotation:      framebuffer.Rotate90,
	Timeouts:      DefaultTimeouts,
	ResetPulse:    10 * time.Millisecond,
	ResetRecovery: 10 * time.Millisecond,
	Voltages:      DefaultVoltages,
}

// Panel limits of the controller: 176 sources and 296 gates.
const (
	maxWidth  = 176
	maxHeight = 296
)

func (o *Opts) normalize() (Opts, error) {
	if o == nil {
		return Opts{}, fmt.Errorf("%w: nil options", ErrConfig)
	}
	n := *o
	if n.Width <= 0 || n.Height <= 0 || n.Width > maxWidth || n.Height > maxHeight {
		return Opts{}, fmt.Errorf("%w: panel %dx%d outside 1x1 to %dx%d", ErrConfig, n.Width, n.Height, maxWidth, maxHeight)
	}
	if n.Depth == 0 {
		n.Depth = framebuffer.Mono
	}
	if n.PartialLimit < 0 {
		return Opts{}, fmt.Errorf("%w: negative partial limit", ErrConfig)
	}
	if n.Waveform != nil {
		if err := n.Waveform.Validate(); err != nil {
			return Opts{}, err
		}
	}
	for _, p := range []struct {
		d   *time.Duration
		def time.Duration
	}{
		{&n.Timeouts.Full, DefaultTimeouts.Full},
		{&n.Timeouts.FullFast, DefaultTimeouts.FullFast},
		{&n.Timeouts.Partial, DefaultTimeouts.Partial},
		{&n.Timeouts.Gray, DefaultTimeouts.Gray},
		{&n.Timeouts.Command, DefaultTimeouts.Command},
	} {
		if *p.d < 0 {
			return Opts{}, fmt.Errorf("%w: negative timeout", ErrConfig)
		}
		if *p.d == 0 {
			*p.d = p.def
		}
	}
	if n.Voltages == (Voltages{}) {
		n.Voltages = DefaultVoltages
	}
	return n, nil
}

// Dev is a handle to an SSD1680 controller and the framebuffer drawn on it.
//
// Operations are serialized: a call made while another one is in progress
// fails with ErrStateViolation instead of waiting.
type Dev struct {
	b    bus
	opts Opts
	fb   *framebuffer.Framebuffer
	eh   errorHandler
	// reg receives register reads.
	reg [readSize]byte

	mu       sync.Mutex
	state    State
	inFlight bool
	// basemap is set when the panel shows a full refresh of prev, so
	// partial updates have a known reference.
	basemap  bool
	partials int
	// readable is set once a read connection is available.
	readable bool

	// prev is the plane the controller holds from the last successful
	// refresh. cur and aux are conversion scratch, regionCur and regionPrev
	// hold the rows of a region refresh.
	prev       []byte
	cur        []byte
	aux        []byte
	regionCur  []byte
	regionPrev []byte
}

// New returns a Dev for the controller on SPI port p. cs may be nil when
// the port drives chip select itself. Nothing is sent to the panel until
// Init.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	d, err := newDev(nil, opts)
	if err != nil {
		return nil, err
	}
	t, err := NewTransport(p, dc, cs, rst, busy)
	if err != nil {
		return nil, err
	}
	if d.opts.BusyPoll > 0 {
		t.BusyPoll = d.opts.BusyPoll
	}
	d.b = t
	return d, nil
}

// NewHat returns a Dev using the pin layout of the Waveshare e-Paper HAT on
// a Raspberry Pi.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

func newDev(b bus, opts *Opts) (*Dev, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	fb, err := framebuffer.New(o.Width, o.Height, o.Depth, o.Rotation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	n := fb.PlaneSize()
	return &Dev{
		b:          b,
		opts:       o,
		fb:         fb,
		prev:       make([]byte, n),
		cur:        make([]byte, n),
		aux:        make([]byte, n),
		regionCur:  make([]byte, n),
		regionPrev: make([]byte, n),
	}, nil
}

// Framebuffer returns the image drawn by the next refresh.
func (d *Dev) Framebuffer() *framebuffer.Framebuffer {
	return d.fb
}

// State returns the current state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// PartialCount returns the number of partial and region refreshes since
// the last full refresh.
func (d *Dev) PartialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.partials
}

// Previous returns a copy of the plane the controller compares the next
// partial refresh against.
func (d *Dev) Previous() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.prev...)
}

// Init resets the controller and configures it. It is also the way out of
// Sleeping and may be called again to recover from a timeout.
func (d *Dev) Init() error {
	if _, err := d.acquire("init", Uninitialized, Ready, Sleeping); err != nil {
		return err
	}
	defer d.release()
	return d.initLocked()
}

// Wake brings a sleeping controller back to Ready. It does nothing when the
// controller is already Ready.
func (d *Dev) Wake() error {
	state, err := d.acquire("wake", Ready, Sleeping)
	if err != nil {
		return err
	}
	defer d.release()
	if state == Sleeping {
		return d.initLocked()
	}
	return nil
}

// Hibernate puts the controller in deep sleep. RAM content is kept, so a
// partial refresh after waking still has its reference.
func (d *Dev) Hibernate() error {
	state, err := d.acquire("hibernate", Ready, Sleeping)
	if err != nil {
		return err
	}
	defer d.release()
	if state == Sleeping {
		return nil
	}
	eh := d.handler()
	deepSleep(eh)
	if eh.err != nil {
		return opError("hibernate", eh.err)
	}
	d.transition(Sleeping)
	return nil
}

// SetInvert inverts the black/white and red RAM content on the next
// refreshes. The setting survives resets.
func (d *Dev) SetInvert(bw, red bool) error {
	if _, err := d.acquire("set invert", Ready); err != nil {
		return err
	}
	defer d.release()
	eh := d.handler()
	setInvert(eh, bw, red)
	if eh.err != nil {
		return opError("set invert", eh.err)
	}
	d.opts.InvertBW, d.opts.InvertRed = bw, red
	return nil
}

// Clear fills the framebuffer with v and runs a full refresh.
func (d *Dev) Clear(v byte) error {
	if err := d.checkIdle("clear"); err != nil {
		return err
	}
	d.fb.Clear(v)
	return d.FullRefresh()
}

// FastClear fills both controller RAM banks with the built-in pattern
// generator instead of sending the planes, then runs a full refresh. The
// framebuffer is cleared to match.
func (d *Dev) FastClear(white bool) error {
	state, err := d.acquire("fast clear", Ready, Sleeping)
	if err != nil {
		return err
	}
	defer d.release()
	if state == Sleeping {
		if err := d.initLocked(); err != nil {
			return err
		}
	}

	d.transition(Updating)
	eh := d.handler()
	configureBorder(eh, borderFollowLUT)
	autoFill(eh, white, d.opts.Timeouts.Command)
	updateDisplay(eh, seqFull, "fast clear", d.opts.Timeouts.Full)
	if eh.err != nil {
		d.transition(Ready)
		return opError("fast clear", eh.err)
	}

	v, fill := framebuffer.Black, byte(0x00)
	if white {
		v, fill = framebuffer.White, 0xFF
	}
	d.fb.Clear(v)
	d.mu.Lock()
	for i := range d.prev {
		d.prev[i] = fill
	}
	d.basemap = true
	d.partials = 0
	d.mu.Unlock()
	return d.endUpdate("fast clear", true)
}

// Halt implements conn.Resource. It puts a Ready controller to sleep.
func (d *Dev) Halt() error {
	if d.State() != Ready {
		return nil
	}
	return d.Hibernate()
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1680.Dev{%s, Width: %d, Height: %d}", d.b, d.fb.Width(), d.fb.Height())
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return d.fb.ColorModel()
}

// Bounds implements display.Drawer. It returns the logical bounds.
func (d *Dev) Bounds() image.Rectangle {
	return d.fb.Bounds()
}

// Draw implements display.Drawer. The image is drawn into the framebuffer
// and the covered region is refreshed.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.checkIdle("draw"); err != nil {
		return err
	}
	draw.Draw(d.fb, dstRect, src, sp, draw.Src)
	return d.RegionRefresh(dstRect)
}

// handler returns the error handler of a new sequence. Callers hold the
// operation.
func (d *Dev) handler() *errorHandler {
	d.eh = errorHandler{b: d.b, busyChanged: d.opts.BusyChanged}
	return &d.eh
}

// acquire marks an operation in progress if the state is one of allowed.
func (d *Dev) acquire(op string, allowed ...State) (State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight {
		return d.state, &StateError{Op: op, State: d.state, InFlight: true}
	}
	for _, s := range allowed {
		if d.state == s {
			d.inFlight = true
			return d.state, nil
		}
	}
	return d.state, &StateError{Op: op, State: d.state}
}

func (d *Dev) release() {
	d.mu.Lock()
	d.inFlight = false
	d.mu.Unlock()
}

// checkIdle fails the way a refresh would before the framebuffer is
// modified.
func (d *Dev) checkIdle(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight {
		return &StateError{Op: op, State: d.state, InFlight: true}
	}
	if d.state != Ready && d.state != Sleeping {
		return &StateError{Op: op, State: d.state}
	}
	return nil
}

// transition moves the state machine. Callers hold the operation; an edge
// missing from the table is a programming error.
func (d *Dev) transition(to State) {
	d.mu.Lock()
	from := d.state
	if !CanTransition(from, to) {
		d.mu.Unlock()
		panic(fmt.Sprintf("ssd1680: invalid transition from %s to %s", from, to))
	}
	d.state = to
	d.mu.Unlock()
	if d.opts.StateChanged != nil {
		d.opts.StateChanged(from, to)
	}
}

func (d *Dev) initLocked() error {
	if d.state != Uninitialized {
		d.transition(Uninitialized)
	}
	eh := d.handler()
	eh.reset(d.opts.ResetPulse, d.opts.ResetRecovery)
	initDisplay(eh, &d.opts)
	if eh.err != nil {
		return opError("init", eh.err)
	}
	d.transition(Ready)
	return nil
}

// endUpdate leaves Updating after op completed, through deep sleep when
// hibernate is set.
func (d *Dev) endUpdate(op string, hibernate bool) error {
	if !hibernate {
		d.transition(Ready)
		return nil
	}
	eh := d.handler()
	deepSleep(eh)
	if eh.err != nil {
		d.transition(Ready)
		return fmt.Errorf("%w, %s was drawn: %w", ErrSleepFailed, op, eh.err)
	}
	d.transition(Sleeping)
	return nil
}

// opError adds the operation to bus errors. Timeouts already carry it.
func opError(op string, err error) error {
	var te *TimeoutError
	if errors.As(err, &te) {
		return err
	}
	return fmt.Errorf("ssd1680: %s: %w", op, err)
}

var _ epaper.Driver = &Dev{}
var _ conn.Resource = &Dev{}
var _ display.Drawer = &Dev{}
