// Package main provides the CLI entry point for winreel.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/winreel/pkg/adapters/chromegrabber"
	"github.com/user/winreel/pkg/adapters/ffmpegwriter"
	"github.com/user/winreel/pkg/adapters/filesink"
	"github.com/user/winreel/pkg/adapters/logger"
	"github.com/user/winreel/pkg/adapters/memframes"
	"github.com/user/winreel/pkg/adapters/mjpegwriter"
	"github.com/user/winreel/pkg/adapters/mp4probe"
	"github.com/user/winreel/pkg/adapters/nullsink"
	"github.com/user/winreel/pkg/adapters/osfilesystem"
	"github.com/user/winreel/pkg/adapters/scaleconverter"
	"github.com/user/winreel/pkg/adapters/screengrabber"
	"github.com/user/winreel/pkg/capture"
	"github.com/user/winreel/pkg/config"
	"github.com/user/winreel/pkg/controller"
	"github.com/user/winreel/pkg/encoder"
	"github.com/user/winreel/pkg/pipeline"
	"github.com/user/winreel/pkg/ports"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "winreel",
		Usage:   "Record a display or web page into a video file",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output video path (.avi = MJPEG, otherwise H.264)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"C"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "target", Usage: "Capture target: display or page"},
			&cli.IntFlag{Name: "display", Usage: "Display index for display capture"},
			&cli.StringFlag{Name: "url", Usage: "Page URL for page capture"},
			&cli.IntFlag{Name: "fps", Usage: "Capture and playback frame rate"},
			&cli.IntFlag{Name: "max-seconds", Usage: "Stop automatically after this many seconds (0 = until interrupted)"},
			&cli.Float64Flag{Name: "scale", Usage: "Spatial scale factor applied to captured frames"},
			&cli.Float64Flag{Name: "quality", Aliases: []string{"q"}, Usage: "Compression quality in [0,1], 1 is best"},
			&cli.IntFlag{Name: "bitrate", Usage: "Target bitrate in kbps (0 = codec default)"},
			&cli.BoolFlag{Name: "stamp", Usage: "Draw a timecode overlay onto each frame"},
			&cli.StringFlag{Name: "chrome-path", Usage: "Path to Chrome executable (falls back to CHROME_PATH env, then system default)"},
			&cli.StringFlag{Name: "ffmpeg-path", Usage: "Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "Save raw frames and session info for inspection"},
			&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: "Directory for debug output"},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: "Log level (debug, info, warn, error)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: "Suppress all log output"},
		},
		Action: record,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func record(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	session := cfg.ToSession()

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.MaxSeconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.MaxSeconds)*time.Second)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, draining remaining frames..."))
		cancel()
	}()

	fs := osfilesystem.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
		if data, err := json.MarshalIndent(session, "", "  "); err == nil {
			if err := sink.SaveSessionJSON(data); err != nil {
				log.Warn(l10n.F("Failed to save session info: %s", err))
			}
		}
	} else {
		sink = nullsink.New()
	}

	grabber, err := newGrabber(ctx, session, cfg, log)
	if err != nil {
		return err
	}
	defer grabber.Close()

	writer, err := newWriter(session, c.String("ffmpeg-path"))
	if err != nil {
		return err
	}

	conv := scaleconverter.New(scaleconverter.Options{
		Stamp: session.Stamp,
		FPS:   session.FPS,
	})

	cursor := pipeline.NewCursor()
	store := memframes.New()
	sched := capture.New(grabber, store, cursor, sink, log, session.Interval())
	eng := encoder.New(session, cursor, store, conv, writer, fs, log)
	ctrl := controller.New(session, sched, eng, cursor, log)

	log.Info(l10n.F("Recording %s to %s at %d fps", describeTarget(session), session.OutputPath, session.FPS))

	result, err := ctrl.Run(ctx)
	if err != nil {
		return err
	}

	log.Info(l10n.F("Recording finished: %d frames, %d ms, %d bytes",
		result.Frames, result.DurationMs, result.Bytes))

	verifyContainer(result.OutputPath, log)

	log.Info(l10n.F("Output saved to %s", result.OutputPath))
	return nil
}

// buildConfig layers CLI flags over the config file (if any) over the
// defaults. Only flags the user actually set override the file.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("output") {
		cfg.OutputPath = c.String("output")
	}
	if c.IsSet("target") {
		cfg.Target = c.String("target")
	}
	if c.IsSet("display") {
		cfg.Display = c.Int("display")
	}
	if c.IsSet("url") {
		cfg.URL = c.String("url")
		// A URL implies page capture unless the target was given explicitly.
		if !c.IsSet("target") {
			cfg.Target = string(ports.TargetPage)
		}
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Int("fps")
	}
	if c.IsSet("max-seconds") {
		cfg.MaxSeconds = c.Int("max-seconds")
	}
	if c.IsSet("scale") {
		cfg.Scale = c.Float64("scale")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Float64("quality")
	}
	if c.IsSet("bitrate") {
		cfg.Bitrate = c.Int("bitrate")
	}
	if c.IsSet("stamp") {
		cfg.Stamp = c.Bool("stamp")
	}
	if c.IsSet("chrome-path") {
		cfg.ChromePath = c.String("chrome-path")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	return cfg, nil
}

func newGrabber(ctx context.Context, session pipeline.Session, cfg config.Config,
	log ports.Logger) (ports.Grabber, error) {
	switch session.Target {
	case ports.TargetPage:
		log.Debug("Launching headless browser for %s", session.PageURL)
		return chromegrabber.Launch(ctx, chromegrabber.Options{
			URL:        session.PageURL,
			ChromePath: cfg.ChromePath,
		})
	default:
		return screengrabber.New(screengrabber.Options{
			Display: session.Display,
		})
	}
}

// newWriter selects the container writer from the output extension:
// .avi gets the pure-Go MJPEG writer, everything else goes through
// ffmpeg as H.264.
func newWriter(session pipeline.Session, ffmpegPath string) (ports.SampleWriter, error) {
	if strings.EqualFold(filepath.Ext(session.OutputPath), ".avi") {
		return mjpegwriter.New(), nil
	}
	if ffmpegPath != "" {
		ffmpegwriter.SetFFmpegPath(ffmpegPath)
	}
	if _, err := ffmpegwriter.FindFFmpeg(); err != nil {
		return nil, err
	}
	return ffmpegwriter.New(), nil
}

// verifyContainer cross-checks an MP4 output against what the writer
// reported. Verification is advisory: a probe failure logs a warning
// but does not fail the recording.
func verifyContainer(path string, log ports.Logger) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
	default:
		return
	}
	info, err := mp4probe.Probe(path)
	if err != nil {
		log.Warn(l10n.F("Container verification failed: %s", err))
		return
	}
	log.Info(l10n.F("Container verified: %d samples, %d ms", info.Samples, info.DurationMs))
}

func describeTarget(session pipeline.Session) string {
	if session.Target == ports.TargetPage {
		return session.PageURL
	}
	return fmt.Sprintf("display %d", session.Display)
}
