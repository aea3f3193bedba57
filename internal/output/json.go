package output

import (
	"encoding/json"
	"io"

	"github.com/buemura/scamscan/pkg/types"
)

// JSONFormatter renders outcomes as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, outcomes []types.ScanOutcome) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(outcomes)
}
