// Command mixengine starts a mixing engine against a live backend for
// manual smoke testing: open input and output devices, add a handful of
// default tracks, and run until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	mixengine "github.com/intuitionamiga/mixengine"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "Path to a YAML config file.")
		sampleRate  = pflag.IntP("sample-rate", "r", 0, "Sample rate (44100 or 48000); overrides config.")
		format      = pflag.StringP("format", "f", "", "Sample format (U8, S16, S24, S32, FL32, FL64...); overrides config.")
		backendName = pflag.StringP("backend", "b", "", "Backend to drive (malgo, oto); overrides config.")
		logLevel    = pflag.StringP("log-level", "l", "", "Log level (debug, info, warn, error); overrides config.")
		numTracks   = pflag.IntP("tracks", "n", 2, "Number of default tracks to create.")
		help        = pflag.BoolP("help", "h", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mixengine [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	cfg, err := mixengine.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *sampleRate != 0 {
		cfg.SampleRate = *sampleRate
	}
	if *format != "" {
		cfg.Format = *format
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	sf, err := mixengine.ParseFormat(cfg.Format)
	if err != nil {
		logger.Fatal("bad sample format", "err", err)
	}

	var backend mixengine.Backend
	switch cfg.Backend {
	case "oto":
		backend = mixengine.NewOtoBackend(2)
	case "malgo", "":
		backend = mixengine.NewMalgoBackend()
	default:
		logger.Fatal("unknown backend", "name", cfg.Backend)
	}

	engine, err := mixengine.NewEngine(cfg.SampleRate, sf,
		mixengine.WithBackend(backend),
		mixengine.WithLogger(logger),
		mixengine.WithBufferFrames(cfg.BufferFrames),
		mixengine.WithMaxEffects(cfg.MaxEffects),
	)
	if err != nil {
		logger.Fatal("new engine", "err", err)
	}
	defer engine.Close()

	for i := 0; i < *numTracks; i++ {
		if err := engine.AddTrack(i); err != nil {
			logger.Fatal("add track", "id", i, "err", err)
		}
	}

	inIdx, err := engine.DefaultDeviceIndex(mixengine.DeviceInput)
	if err != nil {
		logger.Warn("no input device available", "err", err)
	} else if err := engine.StartInputStream(inIdx, 20); err != nil {
		logger.Warn("start input stream", "err", err)
	}

	outIdx, err := engine.DefaultDeviceIndex(mixengine.DeviceOutput)
	if err != nil {
		logger.Fatal("no output device available", "err", err)
	}
	if err := engine.StartOutputStream(outIdx, 20); err != nil {
		logger.Fatal("start output stream", "err", err)
	}

	logger.Info("mixengine running", "backend", engine.CurrentBackend(), "sampleRate", cfg.SampleRate, "format", cfg.Format)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")
}
