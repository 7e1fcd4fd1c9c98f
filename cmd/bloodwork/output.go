package main

import (
	"encoding/json"
	"io"

	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

// writeJSON writes v as a single line. Unit symbols such as µ are written
// as-is rather than escaped.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// reportFailure writes the failure record for err and returns errReported so
// the command exits non-zero without printing anything else to stdout.
func reportFailure(w io.Writer, err error) error {
	if werr := writeJSON(w, pipeline.FailureFrom(err)); werr != nil {
		return werr
	}
	return errReported
}
