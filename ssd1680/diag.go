// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Operating range of the panel.
const (
	MinTemperature = physic.ZeroCelsius
	MaxTemperature = physic.ZeroCelsius + 50*physic.Celsius
)

// Status is the content of the status bit register after the voltage
// detections.
type Status struct {
	// HVReady is set when the high voltages reached their level.
	HVReady bool
	// VCIOK is set when VCI is above the detection level.
	VCIOK  bool
	Busy   bool
	ChipID byte
	Raw    byte
}

// OTPInfo is the panel configuration programmed by the panel maker.
type OTPInfo struct {
	VCOMSelect      byte
	VCOM            byte
	DisplayMode     [5]byte
	WaveformVersion [4]byte
	UserID          [10]byte
}

// ConnectRead enables register reads through p, see Transport.ConnectRead.
// Without it Temperature, Status, OTPInfo and RAMChecksum fail with
// ErrNoReadLine.
func (d *Dev) ConnectRead(p spi.Port) error {
	if _, err := d.acquire("connect read", Uninitialized, Ready, Sleeping); err != nil {
		return err
	}
	defer d.release()
	if err := d.b.ConnectRead(p); err != nil {
		return err
	}
	d.readable = true
	return nil
}

// Temperature samples the controller's internal sensor.
func (d *Dev) Temperature() (physic.Temperature, error) {
	if err := d.beginRead("read temperature"); err != nil {
		return 0, err
	}
	defer d.release()
	eh := d.handler()
	loadTemperature(eh, d.opts.Timeouts.Command)
	eh.readRegister(tempSensorRegRead, d.reg[:2])
	if eh.err != nil {
		return 0, opError("read temperature", eh.err)
	}
	return decodeTemperature(d.reg[0], d.reg[1]), nil
}

// CheckTemperature samples the internal sensor and reports whether the
// value is within MinTemperature and MaxTemperature.
func (d *Dev) CheckTemperature() (physic.Temperature, bool, error) {
	t, err := d.Temperature()
	if err != nil {
		return 0, false, err
	}
	return t, t >= MinTemperature && t <= MaxTemperature, nil
}

// Status powers the analog block, runs the high voltage and VCI detections
// and reads the result.
func (d *Dev) Status() (Status, error) {
	if err := d.beginRead("read status"); err != nil {
		return Status{}, err
	}
	defer d.release()
	eh := d.handler()
	detectVoltages(eh, d.opts.Timeouts.Command)
	eh.readRegister(statusBitRead, d.reg[:1])
	if eh.err != nil {
		return Status{}, opError("read status", eh.err)
	}
	raw := d.reg[0]
	return Status{
		HVReady: raw&0x20 == 0,
		VCIOK:   raw&0x10 == 0,
		Busy:    raw&0x04 != 0,
		ChipID:  raw & 0x03,
		Raw:     raw,
	}, nil
}

// OTPInfo reads the display options and the user ID from OTP.
func (d *Dev) OTPInfo() (OTPInfo, error) {
	if err := d.beginRead("read OTP"); err != nil {
		return OTPInfo{}, err
	}
	defer d.release()
	var info OTPInfo
	eh := d.handler()
	eh.readRegister(otpReadDisplayOption, d.reg[:11])
	info.VCOMSelect = d.reg[0]
	info.VCOM = d.reg[1]
	copy(info.DisplayMode[:], d.reg[2:7])
	copy(info.WaveformVersion[:], d.reg[7:11])
	eh.readRegister(userIDRead, d.reg[:10])
	copy(info.UserID[:], d.reg[:10])
	if eh.err != nil {
		return OTPInfo{}, opError("read OTP", eh.err)
	}
	return info, nil
}

// RAMChecksum has the controller compute the CRC of its RAM.
func (d *Dev) RAMChecksum() (uint16, error) {
	if err := d.beginRead("read CRC"); err != nil {
		return 0, err
	}
	defer d.release()
	eh := d.handler()
	calculateCRC(eh, d.opts.Timeouts.Command)
	eh.readRegister(crcStatusRead, d.reg[:2])
	if eh.err != nil {
		return 0, opError("read CRC", eh.err)
	}
	return uint16(d.reg[0])<<8 | uint16(d.reg[1]), nil
}

// SetGateStart makes the gate scan begin at row, which scrolls the image
// vertically on the next refresh. A reset brings it back to 0.
func (d *Dev) SetGateStart(row int) error {
	if row < 0 || row >= d.opts.Height {
		return fmt.Errorf("%w: gate %d outside 0 to %d", ErrConfig, row, d.opts.Height-1)
	}
	if _, err := d.acquire("set gate start", Ready); err != nil {
		return err
	}
	defer d.release()
	eh := d.handler()
	setGateStart(eh, row)
	if eh.err != nil {
		return opError("set gate start", eh.err)
	}
	return nil
}

// beginRead acquires a register read operation, waking a sleeping
// controller. It releases the operation when it fails.
func (d *Dev) beginRead(op string) error {
	state, err := d.acquire(op, Ready, Sleeping)
	if err != nil {
		return err
	}
	if !d.readable {
		d.release()
		return ErrNoReadLine
	}
	if state == Sleeping {
		if err := d.initLocked(); err != nil {
			d.release()
			return err
		}
	}
	return nil
}

// decodeTemperature converts the 12-bit two's complement register value, in
// 1/16 °C, to a Temperature.
func decodeTemperature(hi, lo byte) physic.Temperature {
	raw := int64(hi)<<4 | int64(lo>>4)
	if raw&0x800 != 0 {
		raw -= 0x1000
	}
	return physic.ZeroCelsius + physic.Temperature(raw)*physic.Celsius/16
}
