package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-query-detect/config"
	"github.com/nvr-ai/go-query-detect/detector"
	"github.com/nvr-ai/go-query-detect/inference"
	"github.com/nvr-ai/go-query-detect/logger"
	"github.com/nvr-ai/go-query-detect/models"
	"github.com/nvr-ai/go-query-detect/render"
)

const (
	// Flags.
	flagVerbose  = "v"
	flagConfig   = "config"
	flagEngine   = "engine"
	flagOutput   = "output"
	flagNoWindow = "no-window"
	flagDebug    = "debug"

	exitFailure = 1
	exitUsage   = 2
)

// valueFlags are the flags that consume the following argument.
var valueFlags = map[string]bool{
	flagVerbose: true,
	flagConfig:  true,
	"c":         true,
	flagEngine:  true,
	flagOutput:  true,
	"o":         true,
}

// deps are the collaborators the command wires together.
type deps struct {
	engines    func(cfg *config.Config, engineType inference.EngineType, log *zap.Logger) detector.EngineFactory
	presenters func(cfg *config.Config, vocab models.Vocabulary) render.Presenter
}

func defaultDeps() deps {
	return deps{engines: engineFactory, presenters: presenterFor}
}

func newApp(stdout, stderr io.Writer, d deps) *cli.App {
	return &cli.App{
		Name:            "detect",
		Usage:           "Automating RoI extraction",
		UsageText:       "detect [options] image prototxt model confidence query",
		Description:     "Finds every object of the query class in an image. Happy detection :)",
		HideVersion:     true,
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagVerbose,
				Usage: "any non-empty `VALUE` prints every object detected in the image",
			},
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagEngine,
				Usage: "inference engine, caffe or onnx (model is then an .onnx file)",
			},
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "also write the annotated image to `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagNoWindow,
				Usage: "do not open a window",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		// Errors are reported by main.
		ExitErrHandler: func(*cli.Context, error) {},
		OnUsageError: func(c *cli.Context, err error, _ bool) error {
			return usageError(c, err.Error())
		},
		Action: func(c *cli.Context) error {
			return run(c, d)
		},
	}
}

// usageError prints the help text to stderr, keeping stdout for result lines.
func usageError(c *cli.Context, msg string) error {
	tpl := c.App.CustomAppHelpTemplate
	if tpl == "" {
		tpl = cli.AppHelpTemplate
	}
	cli.HelpPrinter(c.App.ErrWriter, tpl, c.App)
	return cli.Exit(msg, exitUsage)
}

func run(c *cli.Context, d deps) error {
	if c.NArg() != 5 {
		return usageError(c, fmt.Sprintf("expected 5 arguments (image prototxt model confidence query), got %d", c.NArg()))
	}
	args := c.Args().Slice()

	confidence, err := config.ParseConfidence(args[3])
	if err != nil {
		return usageError(c, err.Error())
	}

	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	if c.IsSet(flagEngine) {
		cfg.Engine = c.String(flagEngine)
	}
	if c.IsSet(flagOutput) {
		cfg.Display.Output = c.String(flagOutput)
	}
	if c.Bool(flagNoWindow) {
		cfg.Display.Window = false
	}

	engineType, err := inference.ParseEngineType(cfg.Engine)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	if _, err := inference.ParseProvider(cfg.ONNX.Provider); err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	debug := c.Bool(flagDebug)
	log, err := logger.NewWithWriter(c.App.ErrWriter, cfg.Log.Level, debug)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer func() { _ = log.Sync() }()

	vocab, err := models.Lookup(models.Family(cfg.Family))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	det, err := detector.New(detector.Options{
		Vocabulary: vocab,
		NewEngine:  d.engines(cfg, engineType, log),
		Presenter:  d.presenters(cfg, vocab),
		Out:        c.App.Writer,
		Logger:     log,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	req := detector.Request{
		ImagePath:  args[0],
		Prototxt:   args[1],
		Model:      args[2],
		Confidence: confidence,
		Query:      args[4],
		Verbose:    config.Verbose(c.String(flagVerbose)),
	}
	log.Debug("starting detection",
		zap.String("engine", string(engineType)),
		zap.String("family", cfg.Family),
		zap.Float32("confidence", req.Confidence),
	)

	_, err = det.Run(c.Context, req)
	if err = multierr.Append(err, det.Close()); err != nil {
		if debug {
			return cli.Exit(fmt.Sprintf("%+v", err), exitFailure)
		}
		return cli.Exit(err.Error(), exitFailure)
	}
	return nil
}

func engineFactory(cfg *config.Config, engineType inference.EngineType, log *zap.Logger) detector.EngineFactory {
	preprocess := inference.Preprocess{
		Width:  cfg.Input.Width,
		Height: cfg.Input.Height,
		Scale:  cfg.Input.Scale,
		Mean:   cfg.Input.Mean,
		SwapRB: cfg.Input.SwapRB,
	}
	onnx := inference.ONNXOptions{
		LibraryPath:   cfg.ONNX.Library,
		InputName:     cfg.ONNX.Input,
		OutputName:    cfg.ONNX.Output,
		MaxDetections: cfg.ONNX.MaxDetections,
		Threads:       cfg.ONNX.Threads,
		Provider:      inference.Provider(strings.ToLower(cfg.ONNX.Provider)),
		Device:        cfg.ONNX.Device,
	}

	return func(req detector.Request) (inference.Engine, error) {
		return inference.NewEngineBuilder().
			WithType(engineType).
			WithModel(req.Prototxt, req.Model).
			WithPreprocess(preprocess).
			WithONNX(onnx).
			WithLogger(log).
			Build()
	}
}

// presenterFor writes the output file first so it exists before the window blocks.
func presenterFor(cfg *config.Config, vocab models.Vocabulary) render.Presenter {
	palette := render.NewPalette(vocab.Len())
	style := render.Style{
		Thickness:   cfg.Render.Thickness,
		FontScale:   cfg.Render.FontScale,
		LabelOffset: cfg.Render.LabelOffset,
	}

	var presenters render.MultiPresenter
	if cfg.Display.Output != "" {
		presenters = append(presenters, render.NewFilePresenter(cfg.Display.Output, palette, style))
	}
	if cfg.Display.Window {
		presenters = append(presenters, render.NewWindowPresenter(cfg.Display.Title, palette, style))
	}
	return presenters
}

// hoistFlags moves flags ahead of the positional arguments so they may appear
// anywhere on the command line. Positionals that look like negative numbers
// stay positional. A value flag missing its value is emitted last, with the
// positionals dropped, so flag parsing rejects it.
func hoistFlags(args []string) []string {
	if len(args) == 0 {
		return args
	}

	flags := []string{}
	positionals := []string{}
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			positionals = append(positionals, rest[i+1:]...)
			break
		}
		if !isFlag(a) {
			positionals = append(positionals, a)
			continue
		}

		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") || !valueFlags[name] {
			flags = append(flags, a)
			continue
		}
		if i+1 >= len(rest) || rest[i+1] == "--" {
			return append(append([]string{args[0]}, flags...), a)
		}
		i++
		flags = append(flags, a, rest[i])
	}

	out := append([]string{args[0]}, flags...)
	if len(positionals) > 0 {
		out = append(out, "--")
		out = append(out, positionals...)
	}
	return out
}

func isFlag(a string) bool {
	if len(a) < 2 || a[0] != '-' {
		return false
	}
	if _, err := cast.ToFloat64E(a); err == nil {
		return false
	}
	return true
}

// exitCode maps an error returned by the app to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	// Flag parsing errors.
	return exitUsage
}
