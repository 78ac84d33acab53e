// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"image"
	"time"
)

type controller interface {
	sendCommand(byte)
	sendArgs(params)
	sendData([]byte)
	waitUntilIdle(op string, timeout time.Duration)
	readRegister(cmd byte, dst []byte)
}

// params holds the parameters of one register write. It is passed by value
// so register writes do not allocate.
type params struct {
	n int
	b [argsSize]byte
}

// args stages up to argsSize register parameters.
func args(b ...byte) params {
	if len(b) > argsSize {
		panic("ssd1680: too many register parameters")
	}
	p := params{n: len(b)}
	copy(p.b[:], b)
	return p
}

func (p *params) bytes() []byte {
	return p.b[:p.n]
}

// initDisplay configures the controller after a hardware reset.
func initDisplay(ctrl controller, opts *Opts) {
	ctrl.waitUntilIdle("reset", opts.Timeouts.Command)
	ctrl.sendCommand(swReset)
	ctrl.waitUntilIdle("software reset", opts.Timeouts.Command)

	ctrl.sendCommand(driverOutputControl)
	ctrl.sendArgs(args(byte((opts.Height-1)&0xFF), byte((opts.Height-1)>>8), 0x00))

	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendArgs(args(dataEntryIncrementXY))

	setMemoryArea(ctrl, fullArea(opts))

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendArgs(args(borderFollowLUT))

	setInvert(ctrl, opts.InvertBW, opts.InvertRed)

	ctrl.sendCommand(tempSensorSelect)
	ctrl.sendArgs(args(tempSensorInternal))

	ctrl.sendCommand(boosterSoftStartControl)
	ctrl.sendArgs(args(softStart[:]...))

	ctrl.waitUntilIdle("init", opts.Timeouts.Command)
}

// fullArea returns the whole RAM in window units: bytes along X, rows
// along Y.
func fullArea(opts *Opts) image.Rectangle {
	return image.Rect(0, 0, (opts.Width+7)/8, opts.Height)
}

// setMemoryArea sets the RAM window and moves the address counters to its
// first byte. X is in bytes, Y in rows, Max is exclusive.
func setMemoryArea(ctrl controller, area image.Rectangle) {
	startX, endX := byte(area.Min.X), byte(area.Max.X-1)
	startY, endY := area.Min.Y, area.Max.Y-1

	ctrl.sendCommand(setRAMXAddressStartEndPosition)
	ctrl.sendArgs(args(startX, endX))

	ctrl.sendCommand(setRAMYAddressStartEndPosition)
	ctrl.sendArgs(args(byte(startY&0xFF), byte(startY>>8), byte(endY&0xFF), byte(endY>>8)))

	ctrl.sendCommand(setRAMXAddressCounter)
	ctrl.sendArgs(args(startX))

	ctrl.sendCommand(setRAMYAddressCounter)
	ctrl.sendArgs(args(byte(startY&0xFF), byte(startY>>8)))
}

// writeRAM writes a plane into one of the two RAM banks within area.
func writeRAM(ctrl controller, cmd byte, area image.Rectangle, data []byte) {
	setMemoryArea(ctrl, area)
	ctrl.sendCommand(cmd)
	ctrl.sendData(data)
}

func configureBorder(ctrl controller, border byte) {
	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendArgs(args(border))
}

// writeFakeTemperature makes the next OTP waveform lookup pick the table of
// a hot panel, which is shorter.
func writeFakeTemperature(ctrl controller) {
	ctrl.sendCommand(tempSensorRegWrite)
	ctrl.sendArgs(args(fakeTemperature[:]...))
}

// loadWaveform writes a custom LUT and the voltages it was designed for.
func loadWaveform(ctrl controller, lut LUT, v *Voltages) {
	ctrl.sendCommand(writeLutRegister)
	ctrl.sendData(lut[:LUTSize])

	ctrl.sendCommand(gateDrivingVoltageControl)
	ctrl.sendArgs(args(v.VGH))

	ctrl.sendCommand(sourceDrivingVoltageControl)
	ctrl.sendArgs(args(v.VSH1, v.VSH2, v.VSL))

	ctrl.sendCommand(vcomRegisterWrite)
	ctrl.sendArgs(args(v.VCOM))
}

// updateDisplay runs an update sequence and waits for it to finish.
func updateDisplay(ctrl controller, seq byte, op string, timeout time.Duration) {
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendArgs(args(seq))
	ctrl.sendCommand(masterActivation)
	ctrl.waitUntilIdle(op, timeout)
}

// autoFill fills both RAM banks with a constant using the controller's
// pattern generator.
func autoFill(ctrl controller, white bool, timeout time.Duration) {
	// Step height and width set to the full panel.
	pattern := byte(0b110<<4 | 0b101)
	if white {
		pattern |= 0x80
	}
	ctrl.sendCommand(autoWriteRedRAMRegPattern)
	ctrl.sendArgs(args(pattern))
	ctrl.waitUntilIdle("auto write red RAM", timeout)

	ctrl.sendCommand(autoWriteBWRAMRegPattern)
	ctrl.sendArgs(args(pattern))
	ctrl.waitUntilIdle("auto write black/white RAM", timeout)
}

func setInvert(ctrl controller, bw, red bool) {
	var a byte
	if red {
		a |= 0x80
	}
	if bw {
		a |= 0x08
	}
	ctrl.sendCommand(displayUpdateControl1)
	ctrl.sendArgs(args(a, 0x80))
}

func deepSleep(ctrl controller) {
	ctrl.sendCommand(deepSleepMode)
	ctrl.sendArgs(args(deepSleepRetainRAM))
}

// loadTemperature samples the internal sensor into the temperature
// register.
func loadTemperature(ctrl controller, timeout time.Duration) {
	ctrl.sendCommand(tempSensorSelect)
	ctrl.sendArgs(args(tempSensorInternal))
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendArgs(args(seqLoadTemperature))
	ctrl.sendCommand(masterActivation)
	ctrl.waitUntilIdle("load temperature", timeout)
}

// detectVoltages powers the analog block and runs the high voltage and VCI
// detections whose results land in the status register.
func detectVoltages(ctrl controller, timeout time.Duration) {
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendArgs(args(seqPowerOn))
	ctrl.sendCommand(masterActivation)
	ctrl.waitUntilIdle("power on", timeout)

	ctrl.sendCommand(hvReadyDetection)
	ctrl.sendArgs(args(hvReadyDetectNow))
	ctrl.waitUntilIdle("HV ready detection", timeout)

	ctrl.sendCommand(vciDetection)
	ctrl.sendArgs(args(vciLevel2V3))
	ctrl.waitUntilIdle("VCI detection", timeout)
}

func calculateCRC(ctrl controller, timeout time.Duration) {
	ctrl.sendCommand(crcCalculation)
	ctrl.waitUntilIdle("CRC calculation", timeout)
}

// setGateStart makes the scan begin at gate row, scrolling the image.
func setGateStart(ctrl controller, row int) {
	ctrl.sendCommand(gateScanStartPosition)
	ctrl.sendArgs(args(byte(row), byte(row>>8)&0x01))
}
