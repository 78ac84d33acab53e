// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

// Commands
const (
	driverOutputControl            byte = 0x01
	gateDrivingVoltageControl      byte = 0x03
	sourceDrivingVoltageControl    byte = 0x04
	boosterSoftStartControl        byte = 0x0C
	gateScanStartPosition          byte = 0x0F
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	hvReadyDetection               byte = 0x14
	vciDetection                   byte = 0x15
	tempSensorSelect               byte = 0x18
	tempSensorRegWrite             byte = 0x1A
	tempSensorRegRead              byte = 0x1B
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	vcomRegisterWrite              byte = 0x2C
	otpReadDisplayOption           byte = 0x2D
	userIDRead                     byte = 0x2E
	statusBitRead                  byte = 0x2F
	writeLutRegister               byte = 0x32
	crcCalculation                 byte = 0x34
	crcStatusRead                  byte = 0x35
	borderWaveformControl          byte = 0x3C
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	autoWriteRedRAMRegPattern      byte = 0x46
	autoWriteBWRAMRegPattern       byte = 0x47
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableAnalog
	displayUpdateEnableClock
)

// Update sequences written to displayUpdateControl2.
const (
	// Clock, analog, temperature, mode 1 waveform, power off.
	seqFull = displayUpdateEnableClock | displayUpdateEnableAnalog | displayUpdateLoadTemperature |
		displayUpdateLoadLUTFromOTP | displayUpdateDisplay | displayUpdateDisableAnalog | displayUpdateDisableClock // 0xF7

	// As seqFull without the temperature read, so the value written by
	// writeFakeTemperature selects the OTP waveform.
	seqFullFast = displayUpdateEnableClock | displayUpdateEnableAnalog |
		displayUpdateLoadLUTFromOTP | displayUpdateDisplay | displayUpdateDisableAnalog | displayUpdateDisableClock // 0xD7

	// Mode 2 waveform, analog stays powered for the next partial update.
	seqPartial = displayUpdateEnableClock | displayUpdateEnableAnalog | displayUpdateLoadTemperature |
		displayUpdateLoadLUTFromOTP | displayUpdateMode2 | displayUpdateDisplay // 0xFC

	// Waveform from the LUT register, no temperature read, power off.
	seqCustomLUT = displayUpdateEnableClock | displayUpdateEnableAnalog |
		displayUpdateDisplay | displayUpdateDisableAnalog | displayUpdateDisableClock // 0xC7

	// Sample the internal sensor into the temperature register.
	seqLoadTemperature = displayUpdateEnableClock | displayUpdateLoadTemperature |
		displayUpdateLoadLUTFromOTP | displayUpdateDisableClock // 0xB1

	// Analog stays on so the detection commands have something to measure.
	seqPowerOn = displayUpdateEnableClock | displayUpdateEnableAnalog | displayUpdateLoadTemperature // 0xE0
)

// Register values.
const (
	dataEntryIncrementXY byte = 0x03 // X increment, Y increment, X first
	borderFollowLUT      byte = 0x05
	borderVCOM           byte = 0x80
	tempSensorInternal   byte = 0x80
	deepSleepRetainRAM   byte = 0x01
	hvReadyDetectNow     byte = 0x00
	vciLevel2V3          byte = 0x04
)

var softStart = [4]byte{0x8B, 0x9C, 0x96, 0x0F}

// fakeTemperature is 100°C in the 12-bit register format.
var fakeTemperature = [2]byte{0x64, 0x00}
