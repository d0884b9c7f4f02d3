package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/amidelab/enumerator/internal/domain"
)

// Printer renders enumeration results: accepted products on out, load
// counts and rejection diagnostics on diag. It implements usecase.ResultSink.
type Printer struct {
	mu   sync.Mutex
	out  io.Writer
	diag io.Writer
}

// NewPrinter creates a printer writing products to out and diagnostics to diag
func NewPrinter(out, diag io.Writer) *Printer {
	return &Printer{out: out, diag: diag}
}

// Loaded reports the pool sizes once both pools have been read
func (p *Printer) Loaded(acids, amines int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintf(p.diag, "Read %d acids and %d amine reagents\n", acids, amines)
	return err
}

// Accept writes "<product> <acid> + <amine>"
func (p *Printer) Accept(r *domain.Accepted) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintf(p.out, "%s %s\n", r.ProductText, r.CombinedName)
	return err
}

// Reject writes the candidate count for the pair followed by one line per
// candidate. An engine or serialization error is written first, since it
// is the reason a lone candidate was still rejected.
func (p *Printer) Reject(r *domain.Rejected) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.Err != nil {
		if _, err := fmt.Fprintf(p.diag, "error: %v\n", r.Err); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(p.diag, "Got %d from %s %s\n", r.CandidateCount, r.AcidText, r.AmineText); err != nil {
		return err
	}
	for _, text := range r.CandidateTexts {
		if _, err := fmt.Fprintln(p.diag, text); err != nil {
			return err
		}
	}
	return nil
}
