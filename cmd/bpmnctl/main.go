package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/json-iterator/go"
	"github.com/panjf2000/ants/v2"
	"github.com/procflow/bpmn"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type config struct {
	Strict  bool   `yaml:"strict"`
	Workers int    `yaml:"workers"`
	OutDir  string `yaml:"outDir"`
}

var (
	cfgFile string
	cfg     = config{Workers: 4}
	verbose bool
	log     *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:          "bpmnctl",
		Short:        "Convert and inspect BPMN process documents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				data, err := os.ReadFile(cfgFile)
				if err != nil {
					return err
				}
				var fc config
				if err = yaml.Unmarshal(data, &fc); err != nil {
					return fmt.Errorf("parse %s: %w", cfgFile, err)
				}
				// explicit flags win over the config file
				if !cmd.Flags().Changed("strict") {
					cfg.Strict = fc.Strict
				}
				if f := cmd.Flags().Lookup("workers"); (f == nil || !f.Changed) && fc.Workers > 0 {
					cfg.Workers = fc.Workers
				}
				if f := cmd.Flags().Lookup("out"); (f == nil || !f.Changed) && fc.OutDir != "" {
					cfg.OutDir = fc.OutDir
				}
			}
			var err error
			if verbose {
				log, err = zap.NewDevelopment()
			} else {
				log, err = zap.NewProduction()
			}
			return err
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "yaml config file")
	root.PersistentFlags().BoolVar(&cfg.Strict, "strict", false, "fail on anomalies instead of repairing")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(convertCmd(), inspectCmd(), layoutCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCodec() *bpmn.Codec {
	return bpmn.NewCodec(bpmn.WithLogger(log), bpmn.WithStrict(cfg.Strict))
}

// convert decodes each input document and re-encodes it, either back
// to BPMN XML or to the editor's JSON form. Multiple files run on a
// shared worker pool.
func convertCmd() *cobra.Command {
	var toJSON bool

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Round-trip documents through the editor graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := ants.NewPool(cfg.Workers)
			if err != nil {
				return err
			}
			defer pool.Release()

			var wg sync.WaitGroup
			var mu sync.Mutex
			var failed []string

			for _, arg := range args {
				path := arg
				wg.Add(1)
				err = pool.Submit(func() {
					defer wg.Done()
					if err := convertOne(path, toJSON); err != nil {
						log.Error("convert failed", zap.String("file", path), zap.Error(err))
						mu.Lock()
						failed = append(failed, path)
						mu.Unlock()
					}
				})
				if err != nil {
					wg.Done()
					return err
				}
			}
			wg.Wait()

			if len(failed) > 0 {
				return fmt.Errorf("%d of %d files failed", len(failed), len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toJSON, "json", false, "emit the editor graph as JSON instead of BPMN XML")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent conversions")
	cmd.Flags().StringVarP(&cfg.OutDir, "out", "o", "", "output directory (default alongside input)")
	return cmd
}

func convertOne(path string, toJSON bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	g, err := newCodec().Decode(string(data))
	if err != nil {
		return err
	}

	var out []byte
	ext := ".bpmn"
	if toJSON {
		ext = ".json"
		out, err = json.MarshalIndent(g, "", "  ")
	} else {
		var text string
		text, err = newCodec().Encode(g)
		out = []byte(text)
	}
	if err != nil {
		return err
	}

	dst := strings.TrimSuffix(path, filepath.Ext(path)) + ".out" + ext
	if cfg.OutDir != "" {
		dst = filepath.Join(cfg.OutDir, filepath.Base(dst))
	}
	if err = os.WriteFile(dst, out, 0o644); err != nil {
		return err
	}
	log.Info("converted", zap.String("from", path), zap.String("to", dst))
	return nil
}

// inspect prints a summary of the decoded graph: pools, nodes, flows
// and any anomalies repaired during decoding.
func inspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a document's editor graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			g, err := newCodec().Decode(string(data))
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(g, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "participants: %d\n", len(g.Participants()))
			for _, p := range g.Participants() {
				fmt.Fprintf(w, "  %s %q (%d lanes)\n", p.Id, p.Name, len(g.Lanes(p.Id)))
			}
			var msgs int
			for _, e := range g.Edges() {
				if e.Message {
					msgs++
				}
			}
			fmt.Fprintf(w, "nodes: %d\n", len(g.Nodes()))
			fmt.Fprintf(w, "flows: %d (%d message)\n", len(g.Edges()), msgs)
			for _, warn := range g.Warnings() {
				fmt.Fprintf(w, "anomaly: %v\n", warn)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full graph as JSON")
	return cmd
}

// layout strips the preserved diagram geometry from a document and
// re-encodes it, so every shape and edge gets freshly derived
// interchange coordinates.
func layoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout FILE",
		Short: "Re-derive diagram geometry from scratch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			g, err := newCodec().Decode(string(data))
			if err != nil {
				return err
			}

			for _, n := range g.Nodes() {
				if n.Extras == nil {
					continue
				}
				n.Extras.ShapeAttrs = nil
				n.Extras.LabelBounds = nil
			}
			for _, e := range g.Edges() {
				if e.Extras == nil {
					continue
				}
				e.Extras.Waypoints = nil
				e.Extras.LabelBounds = nil
				e.Extras.ShapeAttrs = nil
			}

			out, err := newCodec().Encode(g)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
