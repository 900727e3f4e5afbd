package main

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"honnef.co/go/subdiv"
)

func newRefineCmd() *SubCommand {
	var sc *SubCommand
	sc = newSubCommand(&cobra.Command{
		Use:   "refine [file]",
		Short: "Recompute the normals of a curve",
		Long: `
Refine re-estimates the vertex normals of the input curve by iterated conic
fits. Vertices are not moved. Reaching the iteration cap is reported but still
writes the curve.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(sc, cmd, args)
		},
	})
	fs := sc.Cmd.Flags()
	d := subdiv.DefaultNormalRefinementSettings()
	fs.Int("max-refinement-iterations", d.MaxRefinementIterations, "Iteration cap.")
	fs.Float64("angle-limit", d.AngleLimit, "Convergence threshold for the largest normal change, in radians.")
	fs.Int("test-subdiv-level", d.TestSubdivLevel, "Depth of the reference subdivision used to judge the result. 0 disables it.")
	addSubdivisionFlags(fs)
	addIOFlags(fs)
	return sc
}

func runRefine(sc *SubCommand, cmd *cobra.Command, args []string) error {
	c, err := inputCurve(sc.Conf, args)
	if err != nil {
		return err
	}
	ss, err := subdivisionSettings(sc.Conf)
	if err != nil {
		return err
	}
	rs := subdiv.DefaultNormalRefinementSettings()
	if err := sc.Conf.Unmarshal(&rs); err != nil {
		return errors.Wrap(err, "reading refinement settings")
	}

	out, rep, err := subdiv.Refine(c, rs, ss)
	switch {
	case errors.Is(err, subdiv.ErrNonConvergentRefinement):
		glog.Warningf("%v", err)
	case err != nil:
		return err
	}
	glog.Infof("refinement: %d iterations, max change %g, converged %t, %d fallbacks",
		rep.Iterations, rep.MaxAngleChange, rep.Converged, rep.Fallbacks)
	if rs.TestSubdivLevel > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "reference deviation at level %d: %g rad\n", rs.TestSubdivLevel, rep.ReferenceDeviation)
	}
	return writeCurve(sc.Conf, cmd.OutOrStdout(), out)
}
