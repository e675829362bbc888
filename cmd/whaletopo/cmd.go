// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"time"

	"github.com/siemens/whaletopo"
	"github.com/siemens/whaletopo/model"
	"github.com/siemens/whaletopo/snapshot"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultTimeout = 30 * time.Second

// analyzeFlags are the command line flags of the analyze command.
type analyzeFlags struct {
	config    string
	prior     string
	output    string
	format    string
	engine    string
	host      string
	timeout   time.Duration
	name      string
	namespace string
	systemID  string
	filters   []string
}

// newRootCmd returns the root command, passing the specified options on to
// each analysis.
func newRootCmd(opts ...whaletopo.Option) *cobra.Command {
	var debug bool
	rootCmd := &cobra.Command{
		Use:           "whaletopo",
		Short:         "whaletopo discovers container topologies",
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(newAnalyzeCmd(opts...))
	return rootCmd
}

func newAnalyzeCmd(opts ...whaletopo.Option) *cobra.Command {
	flags := analyzeFlags{}
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the local container engine and emit the topology snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return analyze(cmd, &flags, opts)
		},
	}
	fs := analyzeCmd.Flags()
	fs.StringVar(&flags.config, "config", "", "configuration file (JSON or YAML)")
	fs.StringVar(&flags.prior, "prior", "", "prior system snapshot file (JSON or YAML), \"-\" for stdin")
	fs.StringVarP(&flags.output, "output", "o", snapshot.Stdio, "output file, \"-\" for stdout")
	fs.StringVar(&flags.format, "format", "", "output format 'json' or 'yaml' (default from output file name)")
	fs.StringVar(&flags.engine, "engine", whaletopo.DefaultEngine, "container engine, such as 'docker', 'podman', 'containerd' or 'cri'")
	fs.StringVar(&flags.host, "host", "", "container engine API endpoint (default from engine)")
	fs.DurationVar(&flags.timeout, "timeout", defaultTimeout, "maximum duration of the analysis")
	fs.StringVar(&flags.name, "name", "", "system name")
	fs.StringVar(&flags.namespace, "namespace", "", "system namespace")
	fs.StringVar(&flags.systemID, "system-id", "", "system id")
	fs.StringSliceVar(&flags.filters, "filter", nil, "docker container name filter (repeatable)")
	return analyzeCmd
}

func analyze(cmd *cobra.Command, flags *analyzeFlags, opts []whaletopo.Option) error {
	format, err := snapshot.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	cfg := &model.Config{}
	if flags.config != "" {
		if cfg, err = snapshot.LoadConfig(flags.config); err != nil {
			return err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("name") {
		cfg.Name = flags.name
	}
	if fs.Changed("namespace") {
		cfg.Namespace = flags.namespace
	}
	if fs.Changed("system-id") {
		cfg.SystemID = flags.systemID
	}
	if fs.Changed("filter") {
		cfg.DockerFilters = flags.filters
	}

	var prior *model.System
	if flags.prior != "" {
		if prior, err = snapshot.LoadSystem(flags.prior); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}
	opts = append([]whaletopo.Option{whaletopo.WithEngine(flags.engine, flags.host)}, opts...)
	result, err := whaletopo.Analyze(ctx, cfg, prior, opts...)
	if err != nil {
		return err
	}
	if flags.output == snapshot.Stdio {
		if format == "" {
			format = snapshot.JSON
		}
		return snapshot.Encode(cmd.OutOrStdout(), format, result)
	}
	return snapshot.SaveSystem(flags.output, format, result)
}
