package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"honnef.co/go/subdiv"
)

func newFitCmd() *SubCommand {
	var sc *SubCommand
	sc = newSubCommand(&cobra.Command{
		Use:   "fit [file]",
		Short: "Show the conic fitted to one edge",
		Long: `
Fit builds the patch of the given edge, exactly as one subdivision step would,
and prints the fitted conic together with the new point and normal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(sc, cmd, args)
		},
	})
	fs := sc.Cmd.Flags()
	fs.Int("edge", 0, "Index of the edge's first vertex.")
	addSubdivisionFlags(fs)
	fs.String("preset", "", "Use the named preset as input instead of a file.")
	return sc
}

func runFit(sc *SubCommand, cmd *cobra.Command, args []string) error {
	c, err := inputCurve(sc.Conf, args)
	if err != nil {
		return err
	}
	s, err := subdivisionSettings(sc.Conf)
	if err != nil {
		return err
	}
	edge := sc.Conf.GetInt("edge")
	if edge < 0 || edge >= c.NumEdges() {
		return errors.Errorf("edge %d out of range, the curve has %d edges", edge, c.NumEdges())
	}

	w := cmd.OutOrStdout()
	p := subdiv.EdgePatch(c, edge, s)
	fmt.Fprintf(w, "patch: %d samples, edge at %d\n", len(p.Samples), p.Edge)
	res, err := subdiv.FitPatch(p, s)
	if err != nil {
		a, b := p.Endpoints()
		res = subdiv.LinearFallback(a, b)
		fmt.Fprintf(w, "fit failed: %v\n", err)
	} else {
		fmt.Fprintf(w, "conic: %v\n", res.Conic)
		fmt.Fprintf(w, "kind: %v\n", res.Kind)
		fmt.Fprintf(w, "circle: %t, split: %t\n", res.Circle, res.Split)
	}
	fmt.Fprintf(w, "point: %v\n", res.Point)
	fmt.Fprintf(w, "normal: %v\n", res.Normal)
	return nil
}
