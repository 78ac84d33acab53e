// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// epdctl draws a test pattern on an SSD1680 e-paper panel.
//
// Without -dry-run it talks to the panel described by the configuration
// file; with -dry-run it only renders to the terminal.
//
//	epdctl -config epd.yaml -mode full -text "hello"
//	epdctl -config epd.yaml -status
//	epdctl -mode region -region 0,0,120,40 -repeat 10 -interval 1m
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/epaper"
	"github.com/GermanBionicSystems/epaper/screen2d"
	"github.com/GermanBionicSystems/epaper/ssd1680"
	"github.com/GermanBionicSystems/epaper/ssd1680/framebuffer"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var modes = map[string]ssd1680.Mode{
	"full":    ssd1680.Full,
	"fast":    ssd1680.FullFast,
	"partial": ssd1680.Partial,
	"region":  ssd1680.Region,
	"gray":    ssd1680.FourGray,
}

// newFace returns the Go Regular font at size points.
func newFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// pattern renders a frame, four gray swatches, text and the time.
func pattern(w, h int, text string, face font.Face, now time.Time) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, float64(w-2), float64(h-2))
	dc.Stroke()

	for i := 0; i < 4; i++ {
		g := float64(i) / 3
		dc.SetRGB(g, g, g)
		dc.DrawRectangle(float64(w-8-(4-i)*16), 8, 16, 16)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(text, float64(w)/2, float64(h)/2, 0.5, 0.5)
	dc.DrawString(now.Format("15:04:05"), 8, float64(h)-10)
	return dc.Image()
}

func parseRegion(s string) (image.Rectangle, error) {
	var x, y, w, h int
	if _, err := fmt.Sscanf(s, "%d,%d,%d,%d", &x, &y, &w, &h); err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid -region %q, want x,y,w,h: %w", s, err)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

func pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

func openDev(cfg *Config, opts *ssd1680.Opts) (*ssd1680.Dev, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, nil, err
	}
	var pins [3]gpio.PinIO
	for i, name := range []string{cfg.Pins.DC, cfg.Pins.RST, cfg.Pins.Busy} {
		if pins[i], err = pin(name); err != nil {
			return nil, nil, errors.Join(err, port.Close())
		}
	}
	var cs gpio.PinOut
	if cfg.Pins.CS != "" {
		p, err := pin(cfg.Pins.CS)
		if err != nil {
			return nil, nil, errors.Join(err, port.Close())
		}
		cs = p
	}
	dev, err := ssd1680.New(port, pins[0], cs, pins[1], pins[2], opts)
	if err != nil {
		return nil, nil, errors.Join(err, port.Close())
	}
	if cfg.SPIRead == "" {
		return dev, port.Close, nil
	}
	rport, err := spireg.Open(cfg.SPIRead)
	if err != nil {
		return nil, nil, errors.Join(err, port.Close())
	}
	closer := func() error { return errors.Join(rport.Close(), port.Close()) }
	if err := dev.ConnectRead(rport); err != nil {
		return nil, nil, errors.Join(err, closer())
	}
	return dev, closer, nil
}

// printStatus logs what the controller reports about itself.
func printStatus(dev *ssd1680.Dev) error {
	temp, ok, err := dev.CheckTemperature()
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("temperature %s is outside %s to %s", temp, ssd1680.MinTemperature, ssd1680.MaxTemperature)
	} else {
		log.Printf("temperature %s", temp)
	}
	st, err := dev.Status()
	if err != nil {
		return err
	}
	log.Printf("status %#02x: hv ready %t, vci ok %t, chip %d", st.Raw, st.HVReady, st.VCIOK, st.ChipID)
	otp, err := dev.OTPInfo()
	if err != nil {
		return err
	}
	log.Printf("vcom %#02x, waveform version % x, user id % x", otp.VCOM, otp.WaveformVersion, otp.UserID)
	crc, err := dev.RAMChecksum()
	if err != nil {
		return err
	}
	log.Printf("RAM crc %#04x", crc)
	return nil
}

func mainImpl() error {
	configPath := flag.String("config", "", "YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "write the default configuration to -config and exit")
	modeName := flag.String("mode", "full", "refresh mode: full, fast, partial, region, gray, clear or fastclear")
	regionFlag := flag.String("region", "", "region as x,y,w,h in logical coordinates, for -mode region")
	text := flag.String("text", "periph", "text to draw")
	repeat := flag.Int("repeat", 1, "number of refreshes")
	interval := flag.Duration("interval", 10*time.Second, "delay between refreshes")
	dryRun := flag.Bool("dry-run", false, "render to the terminal only")
	preview := flag.Bool("preview", false, "also render to the terminal")
	verbose := flag.Bool("v", false, "log state changes")
	status := flag.Bool("status", false, "log the controller status and exit, needs spi_read in the configuration")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	if *writeConfig {
		return Save(*configPath, DefaultConfig())
	}
	cfg, err := Load(*configPath)
	if err != nil {
		return err
	}
	opts, err := cfg.Opts()
	if err != nil {
		return err
	}
	if *verbose {
		opts.StateChanged = func(from, to ssd1680.State) {
			log.Printf("state %s -> %s", from, to)
		}
	}

	var region image.Rectangle
	if *regionFlag != "" {
		if region, err = parseRegion(*regionFlag); err != nil {
			return err
		}
	}
	mode, ok := modes[*modeName]
	if !ok && *modeName != "clear" && *modeName != "fastclear" {
		return fmt.Errorf("unknown mode %q", *modeName)
	}
	face, err := newFace(24)
	if err != nil {
		return err
	}

	var dev *ssd1680.Dev
	var fb *framebuffer.Framebuffer
	if *dryRun {
		if fb, err = framebuffer.New(opts.Width, opts.Height, opts.Depth, opts.Rotation); err != nil {
			return err
		}
	} else {
		var closer func() error
		if dev, closer, err = openDev(cfg, &opts); err != nil {
			return err
		}
		defer closer()
		defer dev.Halt()
		fb = dev.Framebuffer()
		if err := dev.Init(); err != nil {
			return err
		}
		if *status {
			return printStatus(dev)
		}
	}
	if region.Empty() {
		region = fb.Bounds()
	}

	var scr *screen2d.Dev
	if *dryRun || *preview || cfg.Preview.Enabled {
		scr = screen2d.New(&screen2d.Opts{X: fb.Width(), Y: fb.Height(), Step: cfg.Preview.Step})
		defer scr.Halt()
	}

	for i := 0; i < *repeat; i++ {
		if i != 0 {
			time.Sleep(*interval)
		}
		img := pattern(fb.Width(), fb.Height(), *text, face, time.Now())
		draw.Draw(fb, fb.Bounds(), img, image.Point{}, draw.Src)

		if dev != nil {
			start := time.Now()
			if err := refresh(dev, *modeName, mode, region); err != nil {
				return err
			}
			log.Printf("%s refresh took %s (typical %s), %d partial since last full", *modeName, time.Since(start).Round(time.Millisecond), typical(*modeName, mode), dev.PartialCount())
		}
		if scr != nil {
			if err := scr.Draw(fb.Bounds(), fb, image.Point{}); err != nil {
				return err
			}
		}
	}
	return nil
}

// typical returns the usual panel busy time of a refresh.
func typical(name string, mode ssd1680.Mode) time.Duration {
	switch {
	case name == "clear" || name == "fastclear" || mode == ssd1680.Full:
		return epaper.Typical.Full
	case mode == ssd1680.FullFast:
		return epaper.Typical.FullFast
	case mode == ssd1680.Partial || mode == ssd1680.Region:
		return epaper.Typical.Partial
	case mode == ssd1680.FourGray:
		return epaper.Typical.FourGray
	}
	return epaper.Typical.CustomLUT
}

// refresh runs one refresh. The driver turns the first partial refresh of
// the process into a full one.
func refresh(dev *ssd1680.Dev, name string, mode ssd1680.Mode, region image.Rectangle) error {
	switch name {
	case "clear":
		return dev.Clear(framebuffer.White)
	case "fastclear":
		return dev.FastClear(true)
	}
	return dev.Refresh(ssd1680.Request{Mode: mode, Rect: region})
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "epdctl: %s.\n", err)
		os.Exit(1)
	}
}
