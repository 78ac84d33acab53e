// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"bytes"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/GermanBionicSystems/epaper/ssd1680/framebuffer"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// raceEnabled is set when the race detector, which allocates, is on.
var raceEnabled bool

func TestRegionsRefresh(t *testing.T) {
	h := newHarness(t, func(o *Opts) { o.Rotation = framebuffer.Rotate0 })
	h.ready(t)
	d, b := h.d, h.b

	d.fb.FillRect(0, 0, 8, 4, framebuffer.White)
	d.fb.SetPixel(100, 100, framebuffer.White)

	if err := d.RegionsRefresh(image.Rect(0, 0, 8, 4), image.Rect(16, 10, 24, 12)); err != nil {
		t.Fatalf("RegionsRefresh() failed: %v", err)
	}

	first, second := image.Rect(0, 0, 1, 4), image.Rect(2, 10, 3, 12)
	want := concat(
		[]record{{cmd: borderWaveformControl, data: []byte{borderVCOM}}},
		windowRecords(first),
		[]record{{cmd: writeRAMRed, data: make([]byte, 4)}},
		windowRecords(first),
		[]record{{cmd: writeRAMBW, data: []byte{0xFF, 0xFF, 0xFF, 0xFF}}},
		windowRecords(second),
		[]record{{cmd: writeRAMRed, data: make([]byte, 2)}},
		windowRecords(second),
		[]record{{cmd: writeRAMBW, data: make([]byte, 2)}},
		[]record{
			{cmd: displayUpdateControl2, data: []byte{0xFC}},
			{cmd: masterActivation},
		},
	)
	if diff := diffRecords(b.records, want); diff != "" {
		t.Errorf("RegionsRefresh() difference (-got +want):\n%s", diff)
	}

	prev := d.Previous()
	for y := 0; y < 4; y++ {
		if prev[y*16] != 0xFF {
			t.Errorf("row %d of the first region = %#x, want 0xff", y, prev[y*16])
		}
	}
	if prev[100*16+100/8] != 0 {
		t.Error("pixel outside the regions was recorded as sent")
	}
	if n := d.PartialCount(); n != 1 {
		t.Errorf("PartialCount() = %d, want 1", n)
	}
}

func TestRegionsRefreshErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		rs   []image.Rectangle
	}{
		{"none", nil},
		{"empty", []image.Rectangle{image.Rect(4, 4, 4, 10)}},
		{"one outside", []image.Rectangle{image.Rect(0, 0, 8, 8), image.Rect(500, 0, 510, 8)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.ready(t)

			err := h.d.RegionsRefresh(tc.rs...)

			if !errors.Is(err, ErrConfig) {
				t.Errorf("RegionsRefresh() error = %v, want ErrConfig", err)
			}
			if len(h.b.records) != 0 {
				t.Errorf("%d commands sent", len(h.b.records))
			}
		})
	}
}

func TestDeepSleepFailsAfterRefresh(t *testing.T) {
	h := newHarness(t, nil)
	d, b := h.d, h.b
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	d.fb.Clear(framebuffer.White)
	b.failCmd, b.failErr = deepSleepMode, errBus

	err := d.FullRefresh()

	if !errors.Is(err, ErrSleepFailed) || !errors.Is(err, errBus) {
		t.Fatalf("FullRefresh() error = %v, want ErrSleepFailed wrapping %v", err, errBus)
	}
	if s := d.State(); s != Ready {
		t.Errorf("State() = %s, want Ready", s)
	}
	if !bytes.Equal(d.Previous(), monoPlane(d)) {
		t.Error("previous frame is not the frame that was drawn")
	}

	// The full refresh counts as a reference for partial refreshes.
	b.failErr = nil
	b.clear()
	if err := d.PartialRefresh(); err != nil {
		t.Fatalf("PartialRefresh() failed: %v", err)
	}
	if diff := cmp.Diff(updateCodes(b.records), []byte{0xFC}); diff != "" {
		t.Errorf("update codes (-got +want):\n%s", diff)
	}
}

// nopBus accepts everything and is never busy.
type nopBus struct{}

func (nopBus) SendCommand(byte) error { return nil }
func (nopBus) SendArgs(...byte) error { return nil }
func (nopBus) SendData([]byte) error { return nil }
func (nopBus) ReadRegister(byte, []byte) error { return nil }
func (nopBus) ConnectRead(spi.Port) error { return nil }
func (nopBus) Reset(time.Duration, time.Duration) error { return nil }
func (nopBus) WaitBusy(time.Duration) bool { return true }
func (nopBus) String() string { return "nop" }

// discardPort is an SPI port whose connection drops every transfer.
type discardPort struct{}

func (discardPort) String() string { return "discard" }
func (discardPort) LimitSpeed(physic.Frequency) error { return nil }
func (discardPort) Connect(physic.Frequency, spi.Mode, int) (spi.Conn, error) {
	return discardConn{}, nil
}

type discardConn struct{}

func (discardConn) String() string { return "discard" }
func (discardConn) Tx(w, r []byte) error { return nil }
func (discardConn) Duplex() conn.Duplex { return conn.Half }
func (discardConn) TxPackets([]spi.Packet) error { return nil }

func TestRefreshDoesNotAllocate(t *testing.T) {
	if raceEnabled {
		t.Skip("the race detector allocates")
	}
	opts := GDEY029T94
	opts.ResetPulse, opts.ResetRecovery = 0, 0
	opts.PartialLimit = 0
	withNop, err := newDev(nopBus{}, &opts)
	if err != nil {
		t.Fatal(err)
	}
	withTransport, err := New(discardPort{}, &gpiotest.Pin{N: "dc"}, nil, &gpiotest.Pin{N: "rst"}, &gpiotest.Pin{N: "busy"}, &opts)
	if err != nil {
		t.Fatal(err)
	}
	for name, d := range map[string]*Dev{"bus": withNop, "transport": withTransport} {
		t.Run(name, func(t *testing.T) {
			for _, step := range []func() error{d.Init, d.FullRefresh, d.Init} {
				if err := step(); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
			}
			for _, tc := range []struct {
				name string
				run  func() error
			}{
				{"partial", d.PartialRefresh},
				{"region", func() error { return d.RegionRefresh(image.Rect(8, 8, 64, 64)) }},
			} {
				allocs := testing.AllocsPerRun(20, func() {
					if err := tc.run(); err != nil {
						t.Fatalf("%s refresh failed: %v", tc.name, err)
					}
				})
				if allocs != 0 {
					t.Errorf("%s refresh allocates %.0f times", tc.name, allocs)
				}
			}
		})
	}
}
