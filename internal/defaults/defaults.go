// Package defaults embeds the built-in rule document for the pooled cell
// painting workflow.
package defaults

import (
	_ "embed"

	"github.com/aretw0/stagegen/pkg/spec"
)

// Name identifies the embedded document in logs and reports.
const Name = "pcpip (embedded)"

//go:embed pcpip.yaml
var pcpip []byte

// Bytes returns the raw embedded document.
func Bytes() []byte {
	out := make([]byte, len(pcpip))
	copy(out, pcpip)
	return out
}

// Document parses the embedded document. Each call returns a fresh copy.
func Document() (*spec.Document, error) {
	return spec.Parse(pcpip, spec.FormatYAML)
}
