package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codegangsta/cli"
	log "github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edwinsyarief/kansoku"
	"github.com/edwinsyarief/kansoku/capture"
	"github.com/edwinsyarief/kansoku/config"
	"github.com/edwinsyarief/kansoku/scene"
)

var usage = `
	kansoku runs a synthetic scene through the change tracker and records the
	frames it flushes, or prints frames recorded earlier.

		kansoku simulate --config kansoku.yaml --frames 600 --out frames.db
		kansoku dump --in frames.db --frame 12 --verbose
	`

type kansokuCli struct {
	app *cli.App
	out io.Writer
}

func newKansokuCli() *kansokuCli {
	k := &kansokuCli{out: os.Stdout}
	app := cli.NewApp()
	app.Name = "kansoku"
	app.Usage = usage

	configFlag := cli.StringFlag{
		Name:  "config, c",
		Usage: "YAML configuration file (defaults are used when unset)",
	}
	app.Commands = []cli.Command{
		{
			Name:  "simulate",
			Usage: "Runs a random scene through a tracker.",
			Flags: []cli.Flag{
				configFlag,
				cli.IntFlag{
					Name:  "frames, n",
					Usage: "Number of frames to run",
					Value: 600,
				},
				cli.IntFlag{
					Name:  "objects",
					Usage: "Number of objects in the initial scene",
					Value: 10000,
				},
				cli.IntFlag{
					Name:  "arrays",
					Usage: "Number of render mesh arrays",
					Value: 8,
				},
				cli.IntFlag{
					Name:  "churn",
					Usage: "Random scene mutations per frame",
					Value: 500,
				},
				cli.IntFlag{
					Name:  "seed",
					Usage: "Random seed",
					Value: 1,
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "Capture file, overrides capture.path from the config",
				},
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "Reload the worker count when the config file changes",
				},
			},
			Action: k.cmdSimulate,
		},
		{
			Name:  "dump",
			Usage: "Prints recorded frames.",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in, i",
					Usage: "Capture file to read",
				},
				cli.IntFlag{
					Name:  "frame, f",
					Usage: "Only print this frame (0 prints all)",
				},
				cli.BoolFlag{
					Name:  "verbose, v",
					Usage: "Print every record as JSON",
				},
			},
			Action: k.cmdDump,
		},
	}
	for i := range app.Commands {
		app.Commands[i].HelpName = app.Commands[i].Name
	}
	k.app = app
	return k
}

// run starts a command specified by users.
func (k *kansokuCli) run(args []string) error {
	return k.app.Run(args)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// cmdSimulate implements the "simulate" subcommand.
func (k *kansokuCli) cmdSimulate(c *cli.Context) error {
	cfgPath := c.String("config")
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		cfg.Capture.Path = out
	}
	frames, objects, arrays, churn := c.Int("frames"), c.Int("objects"), c.Int("arrays"), c.Int("churn")
	if frames < 0 || objects < 0 || arrays < 0 || churn < 0 {
		return errors.New("frames, objects, arrays and churn must not be negative")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink kansoku.Sink
	var rec *capture.Recorder
	if cfg.Capture.Path != "" {
		rec, err = capture.Open(cfg.Capture.Path, capture.Options{Compress: cfg.Capture.Compress})
		if err != nil {
			return err
		}
		defer rec.Close()
		sink = rec
	}

	if cfg.Metrics.Enabled {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Infof("serving metrics on %s", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, nil); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	var reload <-chan string
	if c.Bool("watch") {
		if cfgPath == "" {
			return errors.New("--watch needs --config")
		}
		w, err := config.NewWatcher(cfgPath)
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfgPath, err)
		}
		defer w.Close()
		reload = w.Events
	}

	rng := rand.New(rand.NewPCG(uint64(c.Int("seed")), 0))
	s := scene.New(objects)
	s.Populate(rng, arrays, objects)
	opts := cfg.Options()
	tr := kansoku.NewTracker(s, s.Assets(), sink, opts)
	defer tr.Close()

	var flushed, sinkErrors int
	kansoku.Subscribe(tr.Bus(), func(e kansoku.FrameFlushed) {
		switch {
		case e.Err != nil:
			sinkErrors++
		case !e.Empty:
			flushed++
		}
	})

	start := time.Now()
	for i := 0; i < frames; i++ {
		select {
		case path := <-reload:
			if next, err := config.Load(path); err != nil {
				log.Errorf("ignoring config change: %v", err)
			} else if next.Workers != opts.Workers {
				opts.Workers = next.Workers
				tr.SetWorkers(next.Workers)
			}
		default:
		}

		if i > 0 {
			s.Step(rng, churn, arrays)
		}
		if err := tr.Update(ctx); err != nil {
			if ctx.Err() != nil {
				log.Infof("interrupted after %d frames", tr.Frame())
				break
			}
			log.Errorf("%v", err)
		}
	}
	elapsed := time.Since(start)

	fmt.Fprintf(k.out, "frames: %d (%d flushed, %d sink errors)\n", tr.Frame(), flushed, sinkErrors)
	fmt.Fprintf(k.out, "objects: %d tracked, %d in scene\n", tr.Len(), s.Len())
	if n := tr.Frame(); n > 0 {
		fmt.Fprintf(k.out, "time: %v (%v per frame)\n", elapsed, elapsed/time.Duration(n))
	}
	if rec != nil {
		n, err := rec.Len()
		if err != nil {
			return err
		}
		fmt.Fprintf(k.out, "recorded: %d frames in %s\n", n, cfg.Capture.Path)
	}
	return nil
}

// cmdDump implements the "dump" subcommand.
func (k *kansokuCli) cmdDump(c *cli.Context) error {
	path := c.String("in")
	if path == "" {
		path = c.Args().First()
	}
	if path == "" {
		return errors.New("no capture file, use --in")
	}
	rec, err := capture.Open(path, capture.Options{})
	if err != nil {
		return err
	}
	defer rec.Close()

	verbose := c.Bool("verbose")
	show := func(fr *capture.FrameRecord) error {
		fmt.Fprintf(k.out, "frame %d: %d new, %d changed, %d moved, %d renderers, %d renderers removed, %d removed\n",
			fr.Frame, len(fr.NewObjects), len(fr.ObjectChanges), len(fr.Transforms),
			len(fr.MeshRenderers), len(fr.RemovedMeshRenderers), len(fr.RemovedObjects))
		if !verbose {
			return nil
		}
		b, err := json.MarshalIndent(fr, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(k.out, "%s\n", b)
		return err
	}

	if n := c.Int("frame"); n > 0 {
		fr, err := rec.Frame(uint64(n))
		if err != nil {
			return err
		}
		return show(fr)
	}
	return rec.Frames(show)
}
