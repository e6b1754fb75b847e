package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/777genius/audiodevice/internal/audio"
	"github.com/777genius/audiodevice/internal/cli"
	"github.com/777genius/audiodevice/internal/config"
	"github.com/777genius/audiodevice/internal/endpoint"
	"github.com/777genius/audiodevice/internal/errorhandler"
	"github.com/777genius/audiodevice/internal/logging"
	"github.com/777genius/audiodevice/internal/notifier"
	"github.com/777genius/audiodevice/internal/platform"
	"github.com/777genius/audiodevice/internal/wasapi"
)

const version = "1.0.0"

func main() {
	// logToConsole=true: errors will be shown in console
	// exitOnCritical=false: main decides the exit code
	// recoveryEnabled=true: recover from panics
	errorhandler.Init(true, false, true)
	defer errorhandler.HandlePanic()

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := cli.Parse(args)

	cfg, err := config.LoadDefault()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		errorhandler.HandleError(err, "Invalid config, using defaults")
		cfg = config.DefaultConfig()
	}

	level := cfg.LogLevel
	var echo io.Writer
	if opts.Verbose {
		level = "debug"
		echo = os.Stderr
	}
	if _, err := logging.InitLogger(cfg.LogFile, level, echo); err != nil {
		errorhandler.HandleCriticalError(err, "Failed to initialize logger")
		return 1
	}
	defer logging.Close()
	logging.SetPrefix(fmt.Sprintf("PID:%d", os.Getpid()))
	logging.Info("audiodevice v%s started with args %q", version, args)

	sys, err := wasapi.New()
	if err != nil {
		context := "Audio endpoint subsystem unavailable"
		if !platform.IsWindows() {
			context = "Default audio endpoints can only be switched on Windows"
		}
		errorhandler.HandleCriticalError(err, context)
		if opts.List {
			(&cli.Runner{Out: os.Stdout, Program: programName()}).Usage()
		}
		return 1
	}
	defer sys.Close()

	policy, _ := cfg.ConfirmPolicy()
	runner := &cli.Runner{
		Manager: endpoint.NewManager(sys, os.Stdout, policy),
		Out:     os.Stdout,
		Program: programName(),
		Player: func() (cli.SoundPlayer, error) {
			return audio.NewPlayer(cfg.Chime.Volume)
		},
	}

	if opts.Test && opts.Sound == "" {
		opts.Sound = cfg.Chime.Sound
	}
	if cfg.Notify {
		opts.Notify = true
	}
	if opts.Notify {
		n := notifier.New(true, "")
		defer n.Close()
		runner.Announce = n
	}

	runner.Run(opts)
	return 0
}

func programName() string {
	exe := filepath.Base(os.Args[0])
	return strings.TrimSuffix(exe, filepath.Ext(exe))
}
