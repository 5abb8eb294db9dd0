// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teragonaudio/MrsWatson-sub000/internal/config"
	"github.com/teragonaudio/MrsWatson-sub000/internal/exitcode"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/pkg/build"
)

// Command is what main should do once the arguments are parsed.
type Command int

const (
	// CommandNone means cobra already handled the invocation, for example
	// by printing help.
	CommandNone Command = iota
	CommandProcess
	CommandListPlugins
	CommandListFileTypes
	CommandInfo
	CommandVersion
)

// Invocation is the parsed command line.
type Invocation struct {
	Command Command
	Config  *config.Config
}

// flagValues holds raw flag values. Only flags the user set are copied
// into the configuration, so YAML values survive unless overridden.
type flagValues struct {
	configPath string
	logLevel   string
	verbose    bool
	quiet      bool

	chain      string
	root       string
	parameters []string
	maxPlugins int

	input         string
	output        string
	midiFile      string
	pcmSampleRate float64
	pcmChannels   int
	bitDepth      int
	tailTimeMs    int

	sampleRate    float64
	channels      int
	blocksize     int
	tempo         float64
	timeSignature string

	websocketAddr string
	udp           bool
	analyze       bool
}

// ParseArgs parses args (without the program name) into an Invocation.
// Help and version output go to stdout.
func ParseArgs(args []string, stdout io.Writer) (*Invocation, error) {
	buildInfo := build.Get()
	inv := &Invocation{}
	var fv flagValues

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " --plugin <chain> [flags]",
		Short:         "Offline audio plugin host",
		Long:          "Runs audio and MIDI through a chain of plugins, one block at a time, and writes the result.",
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), &fv)
			if err != nil {
				return fmt.Errorf("%w: %w", exitcode.ErrInvalidArgument, err)
			}
			inv.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if inv.Config.Plugins.Chain == "" {
				return fmt.Errorf("%w: --plugin (see --help)", exitcode.ErrMissingRequiredOption)
			}
			inv.Command = CommandProcess
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", exitcode.ErrInvalidArgument, err)
	})

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "list-plugins",
			Short: "List internal plugins and hosted modules in the plugin locations",
			Args:  cobra.NoArgs,
			Run:   func(*cobra.Command, []string) { inv.Command = CommandListPlugins },
		},
		&cobra.Command{
			Use:   "list-file-types",
			Short: "List supported audio file types",
			Args:  cobra.NoArgs,
			Run:   func(*cobra.Command, []string) { inv.Command = CommandListFileTypes },
		},
		&cobra.Command{
			Use:   "info",
			Short: "Open the plugin chain and print information about each plugin",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				if inv.Config.Plugins.Chain == "" {
					return fmt.Errorf("%w: --plugin", exitcode.ErrMissingRequiredOption)
				}
				inv.Command = CommandInfo
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version and build information",
			Args:  cobra.NoArgs,
			Run:   func(*cobra.Command, []string) { inv.Command = CommandVersion },
		},
	)

	// Plugin chain
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&fv.chain, "plugin", "p", "",
		"Plugin chain, as 'name[,preset];name[,preset]'. Presets are .fxp files or program numbers.")
	pf.StringVarP(&fv.root, "plugin-root", "r", "",
		"Directory searched for plugins before the default locations")
	pf.StringArrayVar(&fv.parameters, "parameter", nil,
		"Set a parameter of the first plugin as 'index,value'. May be repeated.")
	pf.IntVar(&fv.maxPlugins, "max-plugins", config.DefaultMaxPlugins,
		"Maximum number of plugins in the chain")

	// Input and output
	pf.StringVarP(&fv.input, "input", "i", "",
		"Input file. '-' reads PCM from stdin, no input generates silence.")
	pf.StringVarP(&fv.output, "output", "o", "",
		"Output file. '-' writes PCM to stdout, no output discards the result.")
	pf.StringVarP(&fv.midiFile, "midi-file", "m", "",
		"Standard MIDI file sent to the first plugin")
	pf.Float64Var(&fv.pcmSampleRate, "pcm-sample-rate", 0,
		"Sample rate of raw PCM input (defaults to --sample-rate)")
	pf.IntVar(&fv.pcmChannels, "pcm-channels", 0,
		"Channel count of raw PCM input (defaults to --channels)")
	pf.IntVar(&fv.bitDepth, "bit-depth", 16,
		"Output bit depth (16, 24 or 32)")
	pf.IntVar(&fv.tailTimeMs, "tail-time", 0,
		"Keep processing for this many milliseconds after the input ends")

	// Audio settings
	pf.Float64VarP(&fv.sampleRate, "sample-rate", "s", 44100,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&fv.channels, "channels", "c", 2,
		"Number of output channels")
	pf.IntVarP(&fv.blocksize, "blocksize", "b", 512,
		"The number of frames processed per block")
	pf.Float64VarP(&fv.tempo, "tempo", "t", 120,
		"Tempo in beats per minute")
	pf.StringVar(&fv.timeSignature, "time-signature", config.DefaultTimeSignature,
		"Time signature, such as '3/4'")

	// Reporting
	pf.StringVar(&fv.configPath, "config", "",
		"YAML configuration file. mrswatson.yaml or config.yaml are used when present.")
	pf.StringVarP(&fv.logLevel, "log-level", "l", config.DefaultLogLevel,
		"Log level (debug, info, warn, error, critical)")
	pf.BoolVarP(&fv.verbose, "verbose", "v", false,
		"Show verbose output, same as --log-level=debug")
	pf.BoolVarP(&fv.quiet, "quiet", "q", false,
		"Only log errors")
	pf.StringVar(&fv.websocketAddr, "websocket", "",
		"Serve progress events over WebSocket on this address, such as ':8080'")
	pf.BoolVar(&fv.udp, "udp", false,
		"Send progress packets over UDP to transport.udp_target_address")
	pf.BoolVar(&fv.analyze, "analyze", false,
		"Log a level and spectrum report of the output")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, exitcode.ErrInvalidArgument) && !errors.Is(err, exitcode.ErrMissingRequiredOption) {
			err = fmt.Errorf("%w: %w", exitcode.ErrInvalidArgument, err)
		}
		return nil, err
	}
	return inv, nil
}

// loadConfig reads the configuration file, lays the flags the user set on
// top and applies the resulting log level.
func loadConfig(flags *pflag.FlagSet, fv *flagValues) (*config.Config, error) {
	cfg, err := config.LoadConfig(fv.configPath)
	if err != nil {
		return nil, err
	}

	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("plugin", func() { cfg.Plugins.Chain = fv.chain })
	set("plugin-root", func() { cfg.Plugins.Root = fv.root })
	set("parameter", func() { cfg.Plugins.Parameters = fv.parameters })
	set("max-plugins", func() { cfg.Plugins.MaxPlugins = fv.maxPlugins })
	set("input", func() { cfg.IO.Input = fv.input })
	set("output", func() { cfg.IO.Output = fv.output })
	set("midi-file", func() { cfg.IO.MidiFile = fv.midiFile })
	set("pcm-sample-rate", func() { cfg.IO.PCMSampleRate = fv.pcmSampleRate })
	set("pcm-channels", func() { cfg.IO.PCMChannels = fv.pcmChannels })
	set("bit-depth", func() { cfg.IO.BitDepth = fv.bitDepth })
	set("tail-time", func() { cfg.IO.TailTimeMs = fv.tailTimeMs })
	set("sample-rate", func() { cfg.Audio.SampleRate = fv.sampleRate })
	set("channels", func() { cfg.Audio.Channels = fv.channels })
	set("blocksize", func() { cfg.Audio.Blocksize = fv.blocksize })
	set("tempo", func() { cfg.Audio.Tempo = fv.tempo })
	set("time-signature", func() { cfg.Audio.TimeSignature = fv.timeSignature })
	set("log-level", func() { cfg.LogLevel = fv.logLevel })
	set("websocket", func() { cfg.Transport.WebSocketAddr = fv.websocketAddr })
	set("udp", func() { cfg.Transport.UDPEnabled = fv.udp })
	set("analyze", func() { cfg.Analysis.Enabled = fv.analyze })
	switch {
	case fv.verbose:
		cfg.LogLevel = log.LevelDebug.String()
	case fv.quiet:
		cfg.LogLevel = log.LevelError.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.Debugf("Configuration: %s", cfg)
	return cfg, nil
}
