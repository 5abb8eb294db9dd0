// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/teragonaudio/MrsWatson-sub000/internal/analysis"
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/config"
	"github.com/teragonaudio/MrsWatson-sub000/internal/engine"
	"github.com/teragonaudio/MrsWatson-sub000/internal/exitcode"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
	"github.com/teragonaudio/MrsWatson-sub000/internal/source"
	"github.com/teragonaudio/MrsWatson-sub000/internal/transport"
	"github.com/teragonaudio/MrsWatson-sub000/internal/transport/udp"
	"github.com/teragonaudio/MrsWatson-sub000/internal/tui"
	"github.com/teragonaudio/MrsWatson-sub000/pkg/build"
)

// IO holds the standard streams used for '-' inputs and outputs.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// Process runs the configured chain over the configured input.
func Process(ctx context.Context, cfg *config.Config, stdio IO) (engine.Result, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return engine.Result{}, fmt.Errorf("%w: %w", exitcode.ErrInvalidArgument, err)
	}
	session := audio.NewSession(settings)
	log.Infof("%s initialized: %s", build.Get().Name, cfg)

	chain, err := openChain(cfg, session)
	if err != nil {
		return engine.Result{}, err
	}
	defer chain.Shutdown()

	src, sink, err := openIO(cfg, settings, stdio)
	if err != nil {
		return engine.Result{}, err
	}

	var seq *midi.Sequence
	if cfg.IO.MidiFile != "" {
		if seq, err = midi.LoadFile(cfg.IO.MidiFile, settings, 0); err != nil {
			return engine.Result{}, err
		}
		log.Infof("Loaded %d MIDI events from '%s'", seq.Len(), cfg.IO.MidiFile)
		if chain.Plugin(0).Type() != plugin.TypeInstrument {
			log.Warnf("MIDI file given but the first plugin '%s' is not an instrument", chain.Plugin(0).Name())
		}
	}

	progress, err := openTransport(cfg.Transport)
	if err != nil {
		return engine.Result{}, err
	}
	defer func() {
		if err := progress.Close(); err != nil {
			log.Warnf("Could not close progress transport: %v", err)
		}
	}()

	var analyzer *analysis.Analyzer
	if cfg.Analysis.Enabled {
		analyzer, err = analysis.NewAnalyzer(settings.SampleRate(), analysis.Options{
			FFTSize:       cfg.Analysis.FFTSize,
			ClipThreshold: cfg.Analysis.ClipThreshold,
			Window:        cfg.Analysis.Window,
		})
		if err != nil {
			return engine.Result{}, fmt.Errorf("%w: %w", exitcode.ErrInvalidArgument, err)
		}
	}

	e, err := engine.NewEngine(engine.Options{
		Session:    session,
		Chain:      chain,
		Source:     src,
		Sink:       sink,
		Midi:       seq,
		Transport:  progress,
		Analyzer:   analyzer,
		TailTimeMs: cfg.IO.TailTimeMs,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return e.Run(ctx)
}

// ShowInfo opens the chain without processing and prints what each
// plugin reports.
func ShowInfo(w io.Writer, cfg *config.Config) error {
	settings, err := cfg.Settings()
	if err != nil {
		return fmt.Errorf("%w: %w", exitcode.ErrInvalidArgument, err)
	}
	chain, err := openChain(cfg, audio.NewSession(settings))
	if err != nil {
		return err
	}
	defer chain.Shutdown()

	for i := range chain.Len() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, tui.RenderPluginInfo(chain.Plugin(i).Info()))
	}
	return nil
}

// ListPlugins prints the built-in plugins and every module found in root
// and the default locations.
func ListPlugins(w io.Writer, root string) {
	fmt.Fprint(w, tui.RenderPlugins(plugin.ListAvailable(root)))
}

// ListFileTypes prints the supported audio formats.
func ListFileTypes(w io.Writer) {
	fmt.Fprint(w, tui.RenderFileTypes(source.FileTypes()))
}

// PrintVersion prints the build information.
func PrintVersion(w io.Writer) {
	fmt.Fprintln(w, build.Get())
}

func openChain(cfg *config.Config, session *audio.Session) (*plugin.Chain, error) {
	chain := plugin.NewChain(session, plugin.WithMaxPlugins(cfg.Plugins.MaxPlugins))
	if err := chain.BuildFromChainSpec(cfg.Plugins.Chain, cfg.Plugins.Root); err != nil {
		chain.Shutdown()
		return nil, err
	}
	if err := chain.SetParameters(cfg.Plugins.Parameters); err != nil {
		chain.Shutdown()
		return nil, err
	}
	return chain, nil
}

func openIO(cfg *config.Config, settings *audio.Settings, stdio IO) (source.Source, source.Sink, error) {
	inOpts := source.OptionsFromSettings(settings)
	inOpts.SampleRate = cfg.PCMSampleRate()
	inOpts.NumChannels = cfg.PCMChannels()
	outOpts := source.OptionsFromSettings(settings)
	for _, opts := range []*source.Options{&inOpts, &outOpts} {
		if stdio.Stdin != nil {
			opts.Stdin = stdio.Stdin
		}
		if stdio.Stdout != nil {
			opts.Stdout = stdio.Stdout
		}
	}

	src, err := source.NewSource(cfg.IO.Input, inOpts)
	if err != nil {
		return nil, nil, err
	}
	sink, err := source.NewSink(cfg.IO.Output, outOpts)
	if err != nil {
		return nil, nil, err
	}
	if cfg.IO.Output == "" {
		log.Warnf("No output given, processed audio will be discarded")
	}
	return src, sink, nil
}

// openTransport always returns a usable transport. Progress is logged at
// debug level and, when configured, also served over WebSocket and UDP.
func openTransport(cfg config.TransportConfig) (transport.Transport, error) {
	multi := transport.Multi{transport.NewLoggingTransport()}

	if cfg.WebSocketAddr != "" {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddr)
		if err != nil {
			multi.Close()
			return nil, err
		}
		multi = append(multi, ws)
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewSender(cfg.UDPTargetAddress)
		if err != nil {
			multi.Close()
			return nil, err
		}
		publisher, err := udp.NewPublisher(cfg.UDPSendInterval, sender)
		if err != nil {
			sender.Close()
			multi.Close()
			return nil, err
		}
		publisher.Start()
		log.Infof("Sending progress packets to %s every %s", cfg.UDPTargetAddress, cfg.UDPSendInterval)
		multi = append(multi, publisher)
	}
	return multi, nil
}
