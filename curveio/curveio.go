// Package curveio reads and writes curves.
//
// Two formats are supported. The text format has one record per line:
//
//	# comment
//	closed
//	v 1 0
//	vn 1 0
//	v 0 1
//	vn 0 1
//	...
//
// "v" lines are vertices and "vn" lines are normals, matched by order. A
// "closed" or "open" line sets the closedness; curves are open by default.
// The YAML format is a mapping with the keys closed, vertices and normals,
// the latter two being lists of [x, y] pairs.
//
// In both formats normals are optional. Curves without normals get normals
// estimated from their edges.
package curveio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"honnef.co/go/subdiv"
)

// Format identifies a curve file format.
type Format int

const (
	FormatText Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "txt", "crv":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, errors.Errorf("unknown curve format %q", s)
	}
}

// FormatFromPath picks the format by file extension. Unknown extensions use
// the text format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// LoadError is returned by [Load].
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("loading curve from %s: %v", e.Path, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError is returned by [Save].
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string { return fmt.Sprintf("saving curve to %s: %v", e.Path, e.Err) }

func (e *SaveError) Unwrap() error { return e.Err }

// Load reads a curve from path, choosing the format by extension.
func Load(path string) (subdiv.Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return subdiv.Curve{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	c, err := Read(f, FormatFromPath(path))
	if err != nil {
		return subdiv.Curve{}, &LoadError{Path: path, Err: err}
	}
	return c, nil
}

// Option configures [Write] and [Save].
type Option func(*options)

type options struct {
	normals bool
}

// WithNormals controls whether normals are written. They are by default.
// Curves saved without normals get estimated normals when loaded.
func WithNormals(include bool) Option {
	return func(o *options) { o.normals = include }
}

// Save writes c to path, choosing the format by extension.
func Save(path string, c subdiv.Curve, opts ...Option) error {
	var buf bytes.Buffer
	if err := Write(&buf, c, FormatFromPath(path), opts...); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// Read parses a curve in the given format.
func Read(r io.Reader, f Format) (subdiv.Curve, error) {
	switch f {
	case FormatText:
		return readText(r)
	case FormatYAML:
		return readYAML(r)
	default:
		return subdiv.Curve{}, errors.Errorf("unsupported format %v", f)
	}
}

// Write encodes c in the given format.
func Write(w io.Writer, c subdiv.Curve, f Format, opts ...Option) error {
	if err := c.Validate(); err != nil {
		return err
	}
	o := options{normals: true}
	for _, opt := range opts {
		opt(&o)
	}
	switch f {
	case FormatText:
		return writeText(w, c, o)
	case FormatYAML:
		return writeYAML(w, c, o)
	default:
		return errors.Errorf("unsupported format %v", f)
	}
}

// build turns parsed data into a curve, estimating missing normals.
func build(vertices []subdiv.Point, normals []subdiv.Vec2, closed bool) (subdiv.Curve, error) {
	if len(normals) == 0 {
		normals = nil
	}
	c, err := subdiv.NewCurve(vertices, normals, closed)
	if err != nil {
		return subdiv.Curve{}, errors.WithStack(err)
	}
	return c, nil
}

func parsePair(fields []string) (float64, float64, error) {
	if len(fields) != 2 {
		return 0, 0, errors.Errorf("expected 2 coordinates, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "x coordinate")
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "y coordinate")
	}
	return x, y, nil
}

func readText(r io.Reader) (subdiv.Curve, error) {
	var (
		vertices []subdiv.Point
		normals  []subdiv.Vec2
		closed   bool
	)
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "closed":
			closed = true
		case "open":
			closed = false
		case "v", "vn":
			x, y, err := parsePair(fields[1:])
			if err != nil {
				return subdiv.Curve{}, errors.Wrapf(err, "line %d", line)
			}
			if fields[0] == "v" {
				vertices = append(vertices, subdiv.Pt(x, y))
			} else {
				normals = append(normals, subdiv.Vec(x, y))
			}
		default:
			return subdiv.Curve{}, errors.Errorf("line %d: unknown record %q", line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return subdiv.Curve{}, errors.Wrap(err, "reading curve")
	}
	return build(vertices, normals, closed)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeText(w io.Writer, c subdiv.Curve, o options) error {
	bw := bufio.NewWriter(w)
	if c.Closed {
		fmt.Fprintln(bw, "closed")
	} else {
		fmt.Fprintln(bw, "open")
	}
	for i, v := range c.Vertices {
		fmt.Fprintf(bw, "v %s %s\n", formatFloat(v.X), formatFloat(v.Y))
		if o.normals {
			n := c.Normals[i]
			fmt.Fprintf(bw, "vn %s %s\n", formatFloat(n.X), formatFloat(n.Y))
		}
	}
	return errors.Wrap(bw.Flush(), "writing curve")
}

type document struct {
	Closed   bool         `yaml:"closed"`
	Vertices [][2]float64 `yaml:"vertices"`
	Normals  [][2]float64 `yaml:"normals,omitempty"`
}

func readYAML(r io.Reader) (subdiv.Curve, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return subdiv.Curve{}, errors.Wrap(err, "decoding yaml curve")
	}
	vertices := make([]subdiv.Point, len(doc.Vertices))
	for i, v := range doc.Vertices {
		vertices[i] = subdiv.Pt(v[0], v[1])
	}
	var normals []subdiv.Vec2
	for _, n := range doc.Normals {
		normals = append(normals, subdiv.Vec(n[0], n[1]))
	}
	return build(vertices, normals, doc.Closed)
}

func writeYAML(w io.Writer, c subdiv.Curve, o options) error {
	doc := document{
		Closed:   c.Closed,
		Vertices: make([][2]float64, len(c.Vertices)),
	}
	for i, v := range c.Vertices {
		doc.Vertices[i] = [2]float64{v.X, v.Y}
	}
	if o.normals {
		doc.Normals = make([][2]float64, len(c.Normals))
		for i, n := range c.Normals {
			doc.Normals[i] = [2]float64{n.X, n.Y}
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding yaml curve")
	}
	return errors.Wrap(enc.Close(), "encoding yaml curve")
}
