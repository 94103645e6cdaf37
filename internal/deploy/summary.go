package deploy

import (
	"fmt"
	"io"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
)

type Outcome string

const (
	Synced  Outcome = "synced"
	Planned Outcome = "planned"
	Failed  Outcome = "failed"
)

// Result is what happened to one entity.
type Result struct {
	Kind      dojo.Kind
	ID        string
	Operation dojo.Operation
	Outcome   Outcome
	Err       error
}

func (r Result) String() string {
	switch r.Outcome {
	case Synced:
		return fmt.Sprintf("%-8s %s %s", pastTense(r.Operation), r.Kind, r.ID)
	case Planned:
		return fmt.Sprintf("%-8s %s %s (dry run)", "would "+r.Operation.String(), r.Kind, r.ID)
	}
	return fmt.Sprintf("%-8s %s %s: %v", r.Outcome, r.Kind, r.ID, r.Err)
}

func pastTense(op dojo.Operation) string {
	if op == dojo.Update {
		return "updated"
	}
	return "created"
}

type Summary struct {
	Results []Result
}

// Count returns how many results ended with outcome after op.
func (s Summary) Count(outcome Outcome, op dojo.Operation) int {
	count := 0
	for _, result := range s.Results {
		if result.Outcome == outcome && result.Operation == op {
			count++
		}
	}
	return count
}

func (s Summary) Failed() []Result {
	var failed []Result
	for _, result := range s.Results {
		if result.Outcome == Failed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Write prints one line per result followed by a totals line.
func (s Summary) Write(w io.Writer) error {
	for _, result := range s.Results {
		if _, err := fmt.Fprintln(w, result); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d created, %d updated, %d planned, %d failed\n",
		s.Count(Synced, dojo.Create),
		s.Count(Synced, dojo.Update),
		s.Count(Planned, dojo.Create)+s.Count(Planned, dojo.Update),
		len(s.Failed()),
	)
	return err
}
