package gpx

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/planbiir/gpxkit/internal/gpxfield"
	"github.com/planbiir/gpxkit/internal/xmlnode"
)

// DefaultCreator is written when a document has no creator
const DefaultCreator = "gpxkit -- https://github.com/planbiir/gpxkit"

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

type parseConfig struct {
	decoder xmlnode.Decoder
	version string
	logger  *slog.Logger
}

// ParseOption configures Parse
type ParseOption func(*parseConfig)

// WithDecoder selects the XML backend. The default is xmlnode.EncodingXML.
func WithDecoder(d xmlnode.Decoder) ParseOption {
	return func(c *parseConfig) { c.decoder = d }
}

// WithVersion reads the document with the given version's field tables
// instead of the version declared on the root element
func WithVersion(version string) ParseOption {
	return func(c *parseConfig) { c.version = version }
}

// WithLogger sets the logger for debug output
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) { c.logger = logger }
}

// Parse reads a GPX document. Malformed XML yields a *SyntaxError and a
// document breaking GPX rules a *SemanticError.
func Parse(r io.Reader, opts ...ParseOption) (*GPX, error) {
	cfg := parseConfig{
		decoder: xmlnode.EncodingXML{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	root, err := cfg.decoder.Decode(r)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	if root.Name() != "gpx" {
		return nil, semanticf("document root is <%s>, expected <gpx>", root.Name())
	}

	version := cfg.version
	if version == "" {
		version, _ = root.Attribute("version")
	}

	g, err := gpxfield.Unmarshal(gpxSchema, root, version)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	g.Namespaces, g.SchemaLocations = rootNamespaces(root)

	cfg.logger.Debug("parsed GPX",
		"version", version,
		"waypoints", len(g.Waypoints),
		"routes", len(g.Routes),
		"tracks", len(g.Tracks),
		"track_points", g.TrackPointsNo())

	return g, nil
}

// ParseString parses a document held in a string
func ParseString(s string, opts ...ParseOption) (*GPX, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseBytes parses a document held in memory
func ParseBytes(b []byte, opts ...ParseOption) (*GPX, error) {
	return Parse(bytes.NewReader(b), opts...)
}

// rootNamespaces collects xmlns declarations (the default namespace under "")
// and the xsi:schemaLocation list
func rootNamespaces(root xmlnode.Node) (map[string]string, []string) {
	namespaces := make(map[string]string)
	for _, a := range root.Attributes() {
		switch {
		case a.Name == "xmlns":
			namespaces[""] = a.Value
		case strings.HasPrefix(a.Name, "xmlns:"):
			namespaces[strings.TrimPrefix(a.Name, "xmlns:")] = a.Value
		}
	}

	xsi := "xsi"
	for prefix, uri := range namespaces {
		if uri == xsiNamespace && prefix != "" {
			xsi = prefix
			break
		}
	}

	var locations []string
	if v, ok := root.Attribute(xsi + ":schemaLocation"); ok {
		locations = strings.Fields(v)
	}
	return namespaces, locations
}

type xmlConfig struct {
	version string
	pretty  bool
}

// XMLOption configures ToXML
type XMLOption func(*xmlConfig)

// XMLVersion selects the output version, "1.0" or "1.1"
func XMLVersion(version string) XMLOption {
	return func(c *xmlConfig) { c.version = version }
}

// PrettyPrint toggles indentation; it is on by default
func PrettyPrint(pretty bool) XMLOption {
	return func(c *xmlConfig) { c.pretty = pretty }
}

// ToXML serializes the document. The version defaults to the document's own
// or 1.1. Creator, namespaces and schema locations are filled in on the
// output only; g is not modified.
func (g *GPX) ToXML(opts ...XMLOption) (string, error) {
	cfg := xmlConfig{pretty: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	version := cfg.version
	if version == "" {
		version = "1.1"
		if g.Version != nil && *g.Version != "" {
			version = *g.Version
		}
	}
	if version != "1.0" && version != "1.1" {
		return "", semanticf("invalid version %s", version)
	}

	doc := *g
	doc.Version = &version
	if doc.Creator == nil || *doc.Creator == "" {
		creator := DefaultCreator
		doc.Creator = &creator
	}

	defaultNamespace := "http://www.topografix.com/GPX/" + strings.ReplaceAll(version, ".", "/")
	locations := g.SchemaLocations
	if len(locations) == 0 {
		locations = []string{defaultNamespace, defaultNamespace + "/gpx.xsd"}
	}

	attrs := []xmlnode.Attr{{Name: "xmlns", Value: defaultNamespace}}
	var prefixes []string
	for prefix := range g.Namespaces {
		if prefix != "" && prefix != "xsi" {
			prefixes = append(prefixes, prefix)
		}
	}
	slices.Sort(prefixes)
	for _, prefix := range prefixes {
		attrs = append(attrs, xmlnode.Attr{Name: "xmlns:" + prefix, Value: g.Namespaces[prefix]})
	}
	attrs = append(attrs,
		xmlnode.Attr{Name: "xmlns:xsi", Value: xsiNamespace},
		xmlnode.Attr{Name: "xsi:schemaLocation", Value: strings.Join(locations, " ")},
	)

	w := gpxfield.NewWriter(cfg.pretty)
	gpxfield.Marshal(w, gpxSchema, &doc, "gpx", version, "", attrs...)

	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + strings.TrimSpace(w.String()), nil
}
