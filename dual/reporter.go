// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dual

import (
	"fmt"
	"io"
	"os"

	"github.com/0xsoniclabs/fidelio/adapter"
)

// Reporter consumes divergence diagnostics. It is invoked exactly once per
// detected divergence, before the corresponding error is surfaced to the
// caller; it must not attempt any recovery.
type Reporter interface {
	// ReportDivergence renders the divergence found while performing the
	// given operation. Traces are nil for operations without an execution
	// trace.
	ReportDivergence(op string, issue error, reference, candidate adapter.Trace)
}

// NewWriterReporter creates a Reporter rendering divergence reports as
// line-oriented text to the given writer.
func NewWriterReporter(out io.Writer) Reporter {
	return &writerReporter{out: out}
}

// NewDefaultReporter creates a Reporter rendering to standard error.
func NewDefaultReporter() Reporter {
	return NewWriterReporter(os.Stderr)
}

type writerReporter struct {
	out io.Writer
}

func (r *writerReporter) ReportDivergence(op string, issue error, reference, candidate adapter.Trace) {
	fmt.Fprintf(r.out, "divergence in %s: %v\n", op, issue)
	fmt.Fprintf(r.out, "--- reference trace ---\n%s\n", renderTrace(reference))
	fmt.Fprintf(r.out, "--- candidate trace ---\n%s\n", renderTrace(candidate))
}

func renderTrace(trace adapter.Trace) string {
	if trace == nil {
		return "(no trace available)"
	}
	return trace.String()
}
