// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/physic"
)

// withRegisters returns a Ready driver with a read connection and the given
// register contents.
func withRegisters(t *testing.T, regs map[byte][]byte) *harness {
	t.Helper()
	h := newHarness(t, nil)
	h.b.regs = regs
	if err := h.d.ConnectRead(nil); err != nil {
		t.Fatalf("ConnectRead() failed: %v", err)
	}
	h.ready(t)
	return h
}

func TestTemperature(t *testing.T) {
	for _, tc := range []struct {
		name    string
		reg     []byte
		want    physic.Temperature
		inRange bool
	}{
		{"room", []byte{0x19, 0x00}, physic.ZeroCelsius + 25*physic.Celsius, true},
		{"fraction", []byte{0x19, 0x80}, physic.ZeroCelsius + 25*physic.Celsius + physic.Celsius/2, true},
		{"below zero", []byte{0xFF, 0x80}, physic.ZeroCelsius - physic.Celsius/2, false},
		{"hot", []byte{0x40, 0x00}, physic.ZeroCelsius + 64*physic.Celsius, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := withRegisters(t, map[byte][]byte{tempSensorRegRead: tc.reg})

			got, ok, err := h.d.CheckTemperature()
			if err != nil {
				t.Fatalf("CheckTemperature() failed: %v", err)
			}

			if got != tc.want {
				t.Errorf("CheckTemperature() = %s, want %s", got, tc.want)
			}
			if ok != tc.inRange {
				t.Errorf("CheckTemperature() in range = %t, want %t", ok, tc.inRange)
			}
			want := []record{
				{cmd: tempSensorSelect, data: []byte{tempSensorInternal}},
				{cmd: displayUpdateControl2, data: []byte{0xB1}},
				{cmd: masterActivation},
				{cmd: tempSensorRegRead},
			}
			if diff := diffRecords(h.b.records, want); diff != "" {
				t.Errorf("commands difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	h := withRegisters(t, map[byte][]byte{statusBitRead: {0x25}})

	got, err := h.d.Status()
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}

	want := Status{HVReady: false, VCIOK: true, Busy: true, ChipID: 1, Raw: 0x25}
	if got != want {
		t.Errorf("Status() = %+v, want %+v", got, want)
	}
	wantRecords := []record{
		{cmd: displayUpdateControl2, data: []byte{0xE0}},
		{cmd: masterActivation},
		{cmd: hvReadyDetection, data: []byte{0x00}},
		{cmd: vciDetection, data: []byte{0x04}},
		{cmd: statusBitRead},
	}
	if diff := diffRecords(h.b.records, wantRecords); diff != "" {
		t.Errorf("commands difference (-got +want):\n%s", diff)
	}
	if n := len(h.b.waits); n != 3 {
		t.Errorf("%d busy waits, want 3", n)
	}
}

func TestOTPInfo(t *testing.T) {
	h := withRegisters(t, map[byte][]byte{
		otpReadDisplayOption: {0x01, 0x36, 0x10, 0x11, 0x12, 0x13, 0x14, 0x20, 0x21, 0x22, 0x23},
		userIDRead:           {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	})

	got, err := h.d.OTPInfo()
	if err != nil {
		t.Fatalf("OTPInfo() failed: %v", err)
	}

	want := OTPInfo{
		VCOMSelect:      0x01,
		VCOM:            0x36,
		DisplayMode:     [5]byte{0x10, 0x11, 0x12, 0x13, 0x14},
		WaveformVersion: [4]byte{0x20, 0x21, 0x22, 0x23},
		UserID:          [10]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("OTPInfo() difference (-got +want):\n%s", diff)
	}
}

func TestRAMChecksum(t *testing.T) {
	h := withRegisters(t, map[byte][]byte{crcStatusRead: {0xBE, 0xEF}})

	got, err := h.d.RAMChecksum()
	if err != nil {
		t.Fatalf("RAMChecksum() failed: %v", err)
	}

	if got != 0xBEEF {
		t.Errorf("RAMChecksum() = %#04x, want 0xbeef", got)
	}
	want := []record{{cmd: crcCalculation}, {cmd: crcStatusRead}}
	if diff := diffRecords(h.b.records, want); diff != "" {
		t.Errorf("commands difference (-got +want):\n%s", diff)
	}
}

func TestReadWakesSleeping(t *testing.T) {
	h := withRegisters(t, map[byte][]byte{tempSensorRegRead: {0x19, 0x00}})
	if err := h.d.FullRefresh(); err != nil {
		t.Fatal(err)
	}
	if s := h.d.State(); s != Sleeping {
		t.Fatalf("State() = %s, want Sleeping", s)
	}
	resets := h.b.resets

	if _, err := h.d.Temperature(); err != nil {
		t.Fatalf("Temperature() failed: %v", err)
	}

	if h.b.resets != resets+1 {
		t.Errorf("%d resets, want 1", h.b.resets-resets)
	}
	if s := h.d.State(); s != Ready {
		t.Errorf("State() = %s, want Ready", s)
	}
}

func TestReadErrors(t *testing.T) {
	t.Run("no read line", func(t *testing.T) {
		h := newHarness(t, nil)
		h.ready(t)

		_, err := h.d.Status()

		if !errors.Is(err, ErrNoReadLine) {
			t.Errorf("Status() error = %v, want ErrNoReadLine", err)
		}
		if len(h.b.records) != 0 {
			t.Errorf("%d commands sent", len(h.b.records))
		}
		// The operation was released.
		if err := h.d.PartialRefresh(); err != nil {
			t.Errorf("PartialRefresh() failed: %v", err)
		}
	})
	t.Run("uninitialized", func(t *testing.T) {
		h := newHarness(t, nil)
		if err := h.d.ConnectRead(nil); err != nil {
			t.Fatal(err)
		}

		_, err := h.d.Temperature()

		var se *StateError
		if !errors.As(err, &se) || se.State != Uninitialized {
			t.Errorf("Temperature() error = %v, want a StateError in Uninitialized", err)
		}
	})
	t.Run("bus", func(t *testing.T) {
		h := withRegisters(t, nil)
		h.b.failCmd, h.b.failErr = crcStatusRead, errBus

		_, err := h.d.RAMChecksum()

		if !errors.Is(err, errBus) {
			t.Errorf("RAMChecksum() error = %v, want %v", err, errBus)
		}
		if s := h.d.State(); s != Ready {
			t.Errorf("State() = %s, want Ready", s)
		}
	})
	t.Run("connect", func(t *testing.T) {
		h := newHarness(t, nil)
		h.b.connectErr = errBus
		h.ready(t)

		if err := h.d.ConnectRead(nil); !errors.Is(err, errBus) {
			t.Errorf("ConnectRead() error = %v, want %v", err, errBus)
		}
		if _, err := h.d.OTPInfo(); !errors.Is(err, ErrNoReadLine) {
			t.Errorf("OTPInfo() error = %v, want ErrNoReadLine", err)
		}
	})
}

func TestSetGateStart(t *testing.T) {
	h := newHarness(t, nil)
	h.ready(t)

	for _, row := range []int{-1, 296} {
		if err := h.d.SetGateStart(row); !errors.Is(err, ErrConfig) {
			t.Errorf("SetGateStart(%d) error = %v, want ErrConfig", row, err)
		}
	}
	if err := h.d.SetGateStart(0x123); err != nil {
		t.Fatalf("SetGateStart() failed: %v", err)
	}

	want := []record{{cmd: gateScanStartPosition, data: []byte{0x23, 0x01}}}
	if diff := diffRecords(h.b.records, want); diff != "" {
		t.Errorf("commands difference (-got +want):\n%s", diff)
	}
}
