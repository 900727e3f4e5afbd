package main

import (
	"bytes"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/subdiv"
	"honnef.co/go/subdiv/curveio"
)

func run(t *testing.T, sc *SubCommand, args ...string) string {
	t.Helper()
	sc.bind(flag.NewFlagSet("persistent", flag.ContinueOnError))
	var out bytes.Buffer
	sc.Cmd.SetOut(&out)
	sc.Cmd.SetErr(&bytes.Buffer{})
	sc.Cmd.SetArgs(args)
	require.NoError(t, sc.Cmd.Execute())
	return out.String()
}

func TestSubdivisionSettingsFromFlags(t *testing.T) {
	sc := newSubdivideCmd()
	sc.bind(flag.NewFlagSet("persistent", flag.ContinueOnError))
	require.NoError(t, sc.Cmd.Flags().Set("patch-size", "3"))
	require.NoError(t, sc.Cmd.Flags().Set("outer-point-weight", "0.25"))
	require.NoError(t, sc.Cmd.Flags().Set("circle-normals", "true"))

	s, err := subdivisionSettings(sc.Conf)
	require.NoError(t, err)
	want := subdiv.DefaultSubdivisionSettings()
	want.PatchSize = 3
	want.OuterPointWeight = 0.25
	want.CircleNormals = true
	assert.Equal(t, want, s)
}

func TestSubdivisionSettingsInvalid(t *testing.T) {
	sc := newSubdivideCmd()
	sc.bind(flag.NewFlagSet("persistent", flag.ContinueOnError))
	require.NoError(t, sc.Cmd.Flags().Set("middle-point-weight", "-1"))

	_, err := subdivisionSettings(sc.Conf)
	assert.ErrorIs(t, err, subdiv.ErrInvalidSettings)
}

func TestSubdivideCommand(t *testing.T) {
	for _, scheme := range []string{"conic", "linear"} {
		t.Run(scheme, func(t *testing.T) {
			out := run(t, newSubdivideCmd(), "--preset", "square", "--level", "2", "--scheme", scheme)
			c, err := curveio.Read(bytes.NewBufferString(out), curveio.FormatText)
			require.NoError(t, err)
			assert.Equal(t, 16, c.Len())
			assert.True(t, c.Closed)
		})
	}
}

func TestSubdivideCommandNoNormals(t *testing.T) {
	out := run(t, newSubdivideCmd(), "--preset", "square", "--no-normals")
	assert.NotContains(t, out, "vn ")
	c, err := curveio.Read(bytes.NewBufferString(out), curveio.FormatText)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())
}

func TestSubdivideCommandErrors(t *testing.T) {
	sc := newSubdivideCmd()
	sc.bind(flag.NewFlagSet("persistent", flag.ContinueOnError))
	sc.Cmd.SetOut(&bytes.Buffer{})
	sc.Cmd.SetErr(&bytes.Buffer{})
	sc.Cmd.SetArgs([]string{"--preset", "square", "--scheme", "cubic"})
	assert.ErrorContains(t, sc.Cmd.Execute(), `unknown scheme "cubic"`)

	sc = newSubdivideCmd()
	sc.bind(flag.NewFlagSet("persistent", flag.ContinueOnError))
	sc.Cmd.SetOut(&bytes.Buffer{})
	sc.Cmd.SetErr(&bytes.Buffer{})
	sc.Cmd.SetArgs([]string{"--preset", "no-such-shape"})
	assert.Error(t, sc.Cmd.Execute())
}

func TestRefineCommand(t *testing.T) {
	out := run(t, newRefineCmd(), "--preset", "ellipse", "--format", "yaml")
	c, err := curveio.Read(bytes.NewBufferString(out), curveio.FormatYAML)
	require.NoError(t, err)
	assert.True(t, c.Closed)
	assert.NotZero(t, c.Len())
}

func TestFitCommand(t *testing.T) {
	out := run(t, newFitCmd(), "--preset", "circle", "--edge", "1")
	assert.Contains(t, out, "patch: ")
	assert.Contains(t, out, "kind: ")
	assert.Contains(t, out, "point: ")
}

func TestPresetsCommand(t *testing.T) {
	out := run(t, newPresetsCmd())
	for _, name := range []string{"circle", "square", "segment"} {
		assert.Contains(t, out, name)
	}
}
