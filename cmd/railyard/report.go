package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/layout"
	"github.com/chazu/railyard/pkg/network"
)

// report is the result of checking one layout.
type report struct {
	File       string            `json:"file"`
	Pieces     int               `json:"pieces"`
	Connectors int               `json:"connectors"`
	Connected  int               `json:"connected"`
	Networks   []network.Network `json:"networks"`
	Findings   []string          `json:"findings"`
	Skips      []string          `json:"skips"`
	HasErrors  bool              `json:"has_errors"`
}

func buildReport(file string, pieces layout.Snapshot) report {
	res := connectivity.NewResolver().ResolveAll(pieces)
	findings := layout.Validate(pieces)

	r := report{
		File:       file,
		Pieces:     len(pieces),
		Connectors: pieces.ConnectorCount(),
		Connected:  res.ConnectedCount(),
		Networks:   network.Build(pieces, res.Connected),
		Findings:   []string{},
		Skips:      []string{},
		HasErrors:  layout.HasErrors(findings),
	}
	for _, f := range findings {
		r.Findings = append(r.Findings, f.Error())
	}
	for _, s := range res.Skips {
		r.Skips = append(r.Skips, fmt.Sprintf("%s: %s", s.Ref, s.Reason))
	}
	return r
}

func (r report) write(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "%s: %d pieces, %d connectors, %d connected\n", r.File, r.Pieces, r.Connectors, r.Connected)
	for i, n := range r.Networks {
		shape := "open"
		if n.Closed() {
			shape = "closed"
		}
		fmt.Fprintf(w, "  network %d: %d pieces, %d open ends (%s) %v\n", i+1, len(n.Pieces), n.OpenEnds, shape, n.Pieces)
	}
	for _, f := range r.Findings {
		fmt.Fprintf(w, "  %s\n", f)
	}
	for _, s := range r.Skips {
		fmt.Fprintf(w, "  skipped %s\n", s)
	}
	return nil
}
