package main

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"honnef.co/go/subdiv"
)

func newSubdivideCmd() *SubCommand {
	var sc *SubCommand
	sc = newSubCommand(&cobra.Command{
		Use:   "subdivide [file]",
		Short: "Subdivide a curve",
		Long: `
Subdivide applies --level subdivision steps to the input curve. Closed curves
double their vertex count with every level, open curves of N vertices get
2N-1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubdivide(sc, cmd, args)
		},
	})
	fs := sc.Cmd.Flags()
	fs.IntP("level", "l", 1, "Number of subdivision levels.")
	fs.String("scheme", "conic", "Subdivision scheme, conic or linear.")
	addSubdivisionFlags(fs)
	addIOFlags(fs)
	return sc
}

func runSubdivide(sc *SubCommand, cmd *cobra.Command, args []string) error {
	c, err := inputCurve(sc.Conf, args)
	if err != nil {
		return err
	}
	s, err := subdivisionSettings(sc.Conf)
	if err != nil {
		return err
	}
	level := sc.Conf.GetInt("level")

	switch name := sc.Conf.GetString("scheme"); name {
	case "conic":
		scheme := subdiv.ConicScheme{Settings: s}
		for l := 1; l <= level; l++ {
			next, stats, err := scheme.StepWithStats(c)
			if err != nil {
				return errors.Wrapf(err, "level %d", l)
			}
			glog.Infof("level %d: %d -> %d vertices, %d conic, %d circle, %d linear, %d split, %d fallback",
				l, c.Len(), next.Len(), stats.ConicFits, stats.CircleFits, stats.LinearFits, stats.Splits, stats.Fallbacks)
			c = next
		}
	case "linear":
		if c, err = subdiv.Subdivide(c, level, subdiv.LinearScheme{}); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown scheme %q", name)
	}
	return writeCurve(sc.Conf, cmd.OutOrStdout(), c)
}
