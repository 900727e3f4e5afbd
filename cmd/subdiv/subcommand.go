package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"honnef.co/go/subdiv"
	"honnef.co/go/subdiv/curveio"
	"honnef.co/go/subdiv/presets"
)

// envPrefix prefixes the environment variables of all subcommands, so
// --middle-point-weight can also be set as SUBDIV_MIDDLE_POINT_WEIGHT.
const envPrefix = "SUBDIV"

// SubCommand is a cobra command with its own viper configuration.
type SubCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper
}

func newSubCommand(cmd *cobra.Command) *SubCommand {
	return &SubCommand{Cmd: cmd, Conf: viper.New()}
}

func (sc *SubCommand) bind(persistent *flag.FlagSet) {
	_ = sc.Conf.BindPFlags(sc.Cmd.Flags())
	_ = sc.Conf.BindPFlags(persistent)
	sc.Conf.SetEnvPrefix(envPrefix)
	sc.Conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	sc.Conf.AutomaticEnv()
}

// addSubdivisionFlags registers one flag per subdivision setting, with the
// library defaults.
func addSubdivisionFlags(fs *flag.FlagSet) {
	d := subdiv.DefaultSubdivisionSettings()
	fs.Float64("middle-point-weight", d.MiddlePointWeight, "Point weight of the edge endpoints.")
	fs.Float64("middle-normal-weight", d.MiddleNormalWeight, "Normal weight of the edge endpoints.")
	fs.Float64("outer-point-weight", d.OuterPointWeight, "Point weight of the neighbouring samples.")
	fs.Float64("outer-normal-weight", d.OuterNormalWeight, "Normal weight of the neighbouring samples.")
	fs.Int("patch-size", d.PatchSize, "Neighbours per side of an edge.")
	fs.Bool("circle-normals", d.CircleNormals, "Fit circles instead of general conics.")
	fs.Bool("area-weighted-normals", d.AreaWeightedNormals, "Weigh edge normals by edge length when estimating normals.")
	fs.Bool("convexity-split", d.ConvexitySplit, "Handle inflections by fitting convex halves.")
	fs.Bool("weighted-infl-point-location", d.WeightedInflPointLocation, "Place inflections by curvature instead of at the edge midpoint.")
	fs.Bool("gravitate-smaller-angles", d.GravitateSmallerAngles, "Prefer the intersection whose normal agrees best with the edge's ray.")
	fs.Float64("epsilon", d.Epsilon, "Smallest accepted eigenvalue ratio of the fitting system.")
	fs.Bool("dynamic-patch-size", d.DynamicPatchSize, "Adapt the neighbour count to vertex spacing and sharp features.")
	fs.Bool("test-toggle", d.TestToggle, "Fit edges serially.")
}

func subdivisionSettings(conf *viper.Viper) (subdiv.SubdivisionSettings, error) {
	s := subdiv.DefaultSubdivisionSettings()
	if err := conf.Unmarshal(&s); err != nil {
		return s, errors.Wrap(err, "reading subdivision settings")
	}
	return s, s.Validate()
}

// addIOFlags registers the flags selecting the input and output curve.
func addIOFlags(fs *flag.FlagSet) {
	fs.String("preset", "", "Use the named preset as input instead of a file.")
	fs.StringP("out", "o", "", "Output file. The format follows the extension. Defaults to stdout.")
	fs.String("format", "text", "Output format for stdout, text or yaml.")
	fs.Bool("no-normals", false, "Write vertices only. Readers estimate the normals from the edges.")
}

// inputCurve loads the curve named by args or the --preset flag.
func inputCurve(conf *viper.Viper, args []string) (subdiv.Curve, error) {
	name := conf.GetString("preset")
	switch {
	case name != "" && len(args) > 0:
		return subdiv.Curve{}, errors.New("give either a file or --preset, not both")
	case name != "":
		c, err := presets.Get(name)
		return c, errors.Wrapf(err, "--preset")
	case len(args) == 1:
		return curveio.Load(args[0])
	case len(args) == 0:
		c, err := curveio.Read(os.Stdin, curveio.FormatText)
		return c, errors.Wrap(err, "reading curve from stdin")
	default:
		return subdiv.Curve{}, errors.Errorf("expected at most one input file, got %d", len(args))
	}
}

// writeCurve saves c to --out, or writes it to w in --format. --no-normals
// leaves the normals out.
func writeCurve(conf *viper.Viper, w io.Writer, c subdiv.Curve) error {
	opt := curveio.WithNormals(!conf.GetBool("no-normals"))
	if out := conf.GetString("out"); out != "" {
		return curveio.Save(out, c, opt)
	}
	f, err := curveio.ParseFormat(conf.GetString("format"))
	if err != nil {
		return err
	}
	return curveio.Write(w, c, f, opt)
}
