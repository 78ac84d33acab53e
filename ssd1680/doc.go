// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1680 controls e-paper panels driven by a Solomon Systech
// SSD1680, such as the Good Display GDEY029T94.
//
// The controller keeps two RAM banks. Before every black/white refresh the
// driver writes the previous frame to the red bank and the new frame to the
// black/white bank, so the controller always compares against what the
// panel shows even after a partial update. The previous frame is only
// updated once the busy line reports completion.
//
// # State machine
//
//	Uninitialized --Init--> Ready
//	Ready --refresh--> Updating --> Ready     (Partial, Region, FourGray, CustomLUT)
//	                   Updating --> Sleeping  (Full, FullFast)
//	Ready --Hibernate--> Sleeping
//	Sleeping --any operation--> Uninitialized --> Ready
//
// A refresh from Uninitialized fails with ErrStateViolation without bus
// traffic. A busy timeout returns a *TimeoutError and leaves the driver
// Ready with the previous frame untouched.
package ssd1680
