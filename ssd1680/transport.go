// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// WriteMaxSpeed is the datasheet limit of the SPI clock for writes.
	WriteMaxSpeed = 20 * physic.MegaHertz
	// ReadMaxSpeed is the datasheet limit of the SPI clock for register
	// reads.
	ReadMaxSpeed = 2500 * physic.KiloHertz
)

const (
	// argsSize is the capacity of the parameter buffer, enough for every
	// register write except RAM and LUT transfers.
	argsSize = 8
	// readSize is the longest register read, the OTP display options.
	readSize = 11
)

// Transport moves command and data bytes to the controller and drives its
// control lines.
//
// Buffers for command bytes and register parameters are allocated once, so
// a refresh sequence does not allocate.
type Transport struct {
	c conn.Conn
	// rc is the read connection, nil when the MISO line is not wired.
	rc conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	// BusyPoll is the delay between two reads of the busy line.
	BusyPoll time.Duration

	maxTx int
	cmd   [1]byte
	args  [argsSize]byte
	rbuf  [readSize + 1]byte
}

// NewTransport connects to the SPI port and configures the control lines.
// cs may be nil when the port drives chip select itself.
func NewTransport(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn) (*Transport, error) {
	if dc == nil || rst == nil || busy == nil {
		return nil, fmt.Errorf("%w: dc, rst and busy pins are required", ErrConfig)
	}
	c, err := p.Connect(WriteMaxSpeed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1680: failed to connect to spi port: %w", err)
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, err
		}
	}
	if err := dc.Out(gpio.High); err != nil {
		return nil, err
	}
	if err := rst.Out(gpio.High); err != nil {
		return nil, err
	}
	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, err
	}

	t := &Transport{
		c:        c,
		dc:       dc,
		cs:       cs,
		rst:      rst,
		busy:     busy,
		BusyPoll: time.Millisecond,
	}
	if l, ok := c.(conn.Limits); ok {
		t.maxTx = l.MaxTxSize()
	}
	return t, nil
}

// SendCommand sends one command byte with the data/command line low.
func (t *Transport) SendCommand(cmd byte) error {
	t.cmd[0] = cmd
	return t.tx(gpio.Low, t.cmd[:])
}

// SendArgs sends a short parameter list with the data/command line high.
// Up to 8 bytes are staged in a preallocated buffer.
func (t *Transport) SendArgs(args ...byte) error {
	if len(args) > len(t.args) {
		return t.SendData(args)
	}
	n := copy(t.args[:], args)
	return t.tx(gpio.High, t.args[:n])
}

// SendData sends data bytes with the data/command line high, split in
// transfers no longer than the port allows.
func (t *Transport) SendData(data []byte) error {
	return t.tx(gpio.High, data)
}

func (t *Transport) tx(dc gpio.Level, w []byte) error {
	if err := t.dc.Out(dc); err != nil {
		return err
	}
	if err := t.selectChip(gpio.Low); err != nil {
		return err
	}
	var err error
	for len(w) > 0 {
		n := len(w)
		if t.maxTx > 0 && n > t.maxTx {
			n = t.maxTx
		}
		if err = t.c.Tx(w[:n], nil); err != nil {
			break
		}
		w = w[n:]
	}
	return errors.Join(err, t.selectChip(gpio.High))
}

// ConnectRead connects p at ReadMaxSpeed for register reads. p is a second
// handle on the panel's SPI bus with the MISO line wired, usually the same
// port opened again. Commands sent by ReadRegister also go through it.
func (t *Transport) ConnectRead(p spi.Port) error {
	c, err := p.Connect(ReadMaxSpeed, spi.Mode0, 8)
	if err != nil {
		return fmt.Errorf("ssd1680: failed to connect to spi read port: %w", err)
	}
	t.rc = c
	return nil
}

// ReadRegister sends cmd and reads len(dst) bytes of the register. The dummy
// byte the controller clocks out first is dropped. Chip select stays
// asserted for the whole transaction when cs is a GPIO.
func (t *Transport) ReadRegister(cmd byte, dst []byte) error {
	if t.rc == nil {
		return ErrNoReadLine
	}
	if len(dst) > readSize {
		return fmt.Errorf("%w: read of %d bytes, at most %d", ErrConfig, len(dst), readSize)
	}
	if err := t.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := t.selectChip(gpio.Low); err != nil {
		return err
	}
	r := t.rbuf[:len(dst)+1]
	t.cmd[0] = cmd
	err := t.rc.Tx(t.cmd[:], nil)
	if err == nil {
		err = t.dc.Out(gpio.High)
	}
	if err == nil {
		err = t.rc.Tx(nil, r)
	}
	if err := errors.Join(err, t.selectChip(gpio.High)); err != nil {
		return err
	}
	copy(dst, r[1:])
	return nil
}

func (t *Transport) selectChip(l gpio.Level) error {
	if t.cs == nil {
		return nil
	}
	return t.cs.Out(l)
}

// Reset pulses the reset line low for pulse, then waits recovery. Callers
// wait for the busy line afterwards.
func (t *Transport) Reset(pulse, recovery time.Duration) error {
	if err := t.rst.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(pulse)
	if err := t.rst.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(recovery)
	return nil
}

// Busy reports whether the controller asserts the busy line.
func (t *Transport) Busy() bool {
	return t.busy.Read() == gpio.High
}

// WaitBusy polls the busy line until it is released or timeout elapses. It
// returns false on timeout.
func (t *Transport) WaitBusy(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for t.Busy() {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(t.BusyPoll)
	}
	return true
}

// String implements fmt.Stringer.
func (t *Transport) String() string {
	return t.c.String()
}
