package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexheretic/crfseek"
	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/logging"
	"github.com/alexheretic/crfseek/internal/reporter"
)

const appVersion = "0.3.0"

// commandContext carries persistent flag state shared by all subcommands.
type commandContext struct {
	configPath string
	logDir     string
	verbose    bool
	jsonOutput bool
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "crfseek",
		Short:         "Find the best constant quality value for a video encode",
		Long: `crfseek searches for the highest CRF value whose encode still meets a
minimum VMAF score and a maximum predicted size, by encoding and scoring
short samples of the source instead of the whole file.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "defaults file path (default platform config dir)")
	flags.StringVar(&ctx.logDir, "log-dir", "", "write a timestamped log file to this directory")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "enable debug output")
	flags.BoolVar(&ctx.jsonOutput, "json", false, "emit NDJSON events on stdout instead of text")

	rootCmd.AddCommand(newCRFSearchCommand(ctx))
	rootCmd.AddCommand(newSampleEncodeCommand(ctx))
	rootCmd.AddCommand(newEncodeCommand(ctx))
	rootCmd.AddCommand(newAutoEncodeCommand(ctx))
	rootCmd.AddCommand(newVMAFCommand(ctx))

	return rootCmd
}

func (c *commandContext) setupLogging() error {
	if c.logDir != "" {
		logger, err := logging.Setup(c.logDir, c.verbose)
		if err != nil {
			return err
		}
		logging.SetGlobal(logger)
		logging.Info("logging to file", "path", logger.FilePath())
		return nil
	}

	level := logging.LevelWarn
	if c.verbose {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
	return nil
}

// reporter builds the configured reporter for a run.
func (c *commandContext) reporter() reporter.Reporter {
	if c.jsonOutput {
		return reporter.NewJSONReporter()
	}
	return reporter.NewTerminalReporter(c.verbose)
}

// settingsFlags holds the per-command encoding and search flags.
type settingsFlags struct {
	encoder        string
	preset         string
	encArgs        []string
	minVMAF        float64
	maxSizePercent float64
	crfRange       string
	hasCRFRange    bool
	samples        int
	sampleDuration float64
	maxIterations  int
	concurrency    int
	vmafModel      string
	pixelFormat    string
	tempDir        string
}

func addSettingsFlags(cmd *cobra.Command, f *settingsFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.encoder, "encoder", "e", config.DefaultEncoder, "ffmpeg video encoder")
	flags.StringVar(&f.preset, "preset", config.DefaultPreset, "encoder speed preset")
	flags.StringArrayVar(&f.encArgs, "enc", nil, "extra encoder argument as key=value (repeatable)")
	flags.Float64Var(&f.minVMAF, "min-vmaf", config.DefaultMinQuality, "minimum acceptable mean VMAF score")
	flags.Float64Var(&f.maxSizePercent, "max-encoded-percent", config.DefaultMaxSizePercent, "maximum predicted size as a percent of the source")
	flags.IntVar(&f.samples, "samples", 0, "number of sample windows (0 = auto from duration)")
	flags.Float64Var(&f.sampleDuration, "sample-duration", config.DefaultSampleDuration, "sample window length in seconds")
	flags.IntVar(&f.maxIterations, "max-iterations", config.DefaultMaxIterations, "maximum number of search trials")
	flags.IntVar(&f.concurrency, "concurrency", 0, "parallel sample encodes (0 = auto)")
	flags.StringVar(&f.vmafModel, "vmaf-model", "", "force a libvmaf model version")
	flags.StringVar(&f.pixelFormat, "pix-fmt", config.DefaultPixelFormat, "output pixel format")
	flags.StringVar(&f.tempDir, "temp-dir", "", "working directory for samples and trial artifacts")
}

// addCRFRangeFlag registers the search range flag on commands that search.
// Commands that take a fixed --crf int instead never set hasCRFRange, so
// settings leaves the range alone for them.
func addCRFRangeFlag(cmd *cobra.Command, f *settingsFlags) {
	f.hasCRFRange = true
	cmd.Flags().StringVar(&f.crfRange, "crf",
		fmt.Sprintf("%d..%d", config.DefaultMinCRF, config.DefaultMaxCRF),
		"crf search range, e.g. 10..55 or a single value")
}

// settings resolves the effective configuration: built-in defaults, then the
// defaults file, then any flag the user actually set.
func (c *commandContext) settings(cmd *cobra.Command, f *settingsFlags) (*config.Settings, error) {
	settings := config.Default()

	path := c.configPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultFilePath()
	}
	if path != "" {
		file, err := config.LoadFile(path)
		if err != nil {
			if explicit {
				return nil, err
			}
			// Missing or unreadable default file is not an error.
		} else {
			file.Apply(settings)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("encoder") {
		settings.Encoder = f.encoder
	}
	if flags.Changed("preset") {
		settings.Preset = f.preset
	}
	if flags.Changed("enc") {
		settings.ExtraArgs = f.encArgs
	}
	if flags.Changed("min-vmaf") {
		settings.MinQuality = f.minVMAF
	}
	if flags.Changed("max-encoded-percent") {
		settings.MaxSizePercent = f.maxSizePercent
	}
	if f.hasCRFRange && flags.Changed("crf") {
		min, max, err := crfseek.ParseCRFRange(f.crfRange)
		if err != nil {
			return nil, err
		}
		settings.MinCRF = min
		settings.MaxCRF = max
	}
	if flags.Changed("samples") {
		settings.SampleCount = f.samples
	}
	if flags.Changed("sample-duration") {
		settings.SampleDuration = f.sampleDuration
	}
	if flags.Changed("max-iterations") {
		settings.MaxIterations = f.maxIterations
	}
	if flags.Changed("concurrency") {
		settings.Concurrency = f.concurrency
	}
	if flags.Changed("vmaf-model") {
		settings.VMAFModel = f.vmafModel
	}
	if flags.Changed("pix-fmt") {
		settings.PixelFormat = f.pixelFormat
	}
	if flags.Changed("temp-dir") {
		settings.TempDir = f.tempDir
	}
	settings.Verbose = c.verbose

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
