// Command subdiv refines curves by conic subdivision.
//
// Curves come from a file (text or YAML, see package curveio) or from a named
// preset, and are written to standard output or to a file:
//
//	subdiv subdivide --preset square --level 4 --out circle.yaml
//	subdiv refine curve.crv --max-refinement-iterations 50
//	subdiv fit --preset star --edge 3
//	subdiv presets
//
// Settings are read from flags, from SUBDIV_* environment variables and from
// an optional YAML file given with --config, in that order of precedence.
package main

import (
	goflag "flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"honnef.co/go/subdiv"
)

var rootCmd = &cobra.Command{
	Use:   "subdiv",
	Short: "Conic subdivision of curves with normals",
	Long: `
subdiv refines polygons with vertex normals into smooth curves. Every
subdivision level inserts one point per edge, computed by fitting a conic to
the edge's neighbourhood. Conics sampled with their true normals are
reproduced exactly.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootConf.GetBool("verbose") {
			h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
			subdiv.SetLogger(slog.New(h))
		}
	},
}

var rootConf = viper.New()

func main() {
	// glog refuses to log before the standard flag set is parsed; its flags
	// are parsed by cobra through pflag.
	_ = goflag.CommandLine.Parse(nil)
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%+v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden by environment variables and flags.")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Log per-step statistics and fallbacks of the subdivision engine to stderr.")
	_ = rootConf.BindPFlags(rootCmd.PersistentFlags())

	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	subcommands := []*SubCommand{
		newSubdivideCmd(), newRefineCmd(), newFitCmd(), newPresetsCmd(),
	}
	for _, sc := range subcommands {
		rootCmd.AddCommand(sc.Cmd)
		sc.bind(rootCmd.PersistentFlags())
	}
	cobra.OnInitialize(func() {
		cfg := rootConf.GetString("config")
		if cfg == "" {
			return
		}
		for _, sc := range subcommands {
			sc.Conf.SetConfigFile(cfg)
			if err := sc.Conf.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "reading config %s: %v\n", cfg, err)
				os.Exit(1)
			}
		}
	})
}
