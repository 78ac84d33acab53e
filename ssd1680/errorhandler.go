// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"time"

	"periph.io/x/conn/v3/spi"
)

// bus is the set of Transport primitives used by Dev.
type bus interface {
	SendCommand(cmd byte) error
	SendArgs(args ...byte) error
	SendData(data []byte) error
	ReadRegister(cmd byte, dst []byte) error
	ConnectRead(p spi.Port) error
	Reset(pulse, recovery time.Duration) error
	WaitBusy(timeout time.Duration) bool
	String() string
}

// errorHandler is a wrapper for error management.
//
// The first failure is kept in err and turns every later call into a no-op,
// so a sequence is written straight through and checked once at the end.
type errorHandler struct {
	b           bus
	busyChanged func(busy bool)
	err         error
	args        [argsSize]byte
}

func (eh *errorHandler) reset(pulse, recovery time.Duration) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.Reset(pulse, recovery)
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.SendCommand(cmd)
}

func (eh *errorHandler) sendArgs(p params) {
	if eh.err != nil {
		return
	}
	n := copy(eh.args[:], p.bytes())
	eh.err = eh.b.SendArgs(eh.args[:n]...)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.SendData(data)
}

func (eh *errorHandler) readRegister(cmd byte, dst []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.ReadRegister(cmd, dst)
}

func (eh *errorHandler) waitUntilIdle(op string, timeout time.Duration) {
	if eh.err != nil {
		return
	}
	if eh.busyChanged != nil {
		eh.busyChanged(true)
		defer eh.busyChanged(false)
	}
	if !eh.b.WaitBusy(timeout) {
		eh.err = &TimeoutError{Op: op, Timeout: timeout}
	}
}
