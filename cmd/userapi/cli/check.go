package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/odyssey-erp/userapi/internal/users"
)

// CheckOptions defines available flags for the check command.
type CheckOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// CheckSummary describes the JSON output of check.
type CheckSummary struct {
	OK       bool         `json:"ok"`
	Records  int          `json:"records"`
	MaxID    int          `json:"max_id"`
	Problems []CheckIssue `json:"problems"`
}

// CheckIssue is one invariant violation found in the collection.
type CheckIssue struct {
	Index int    `json:"index"`
	ID    int    `json:"id"`
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
}

// Issue kinds reported by Inspect.
const (
	IssueDuplicateID    = "duplicate_id"
	IssueDuplicateEmail = "duplicate_email"
	IssueInvalidID      = "invalid_id"
	IssueMissingName    = "missing_name"
	IssueMissingEmail   = "missing_email"
	IssueMissingAge     = "missing_age"
)

// Inspect checks a loaded collection against the uniqueness and presence rules.
func Inspect(records []users.User) CheckSummary {
	summary := CheckSummary{Records: len(records), Problems: []CheckIssue{}}
	ids := make(map[int]bool, len(records))
	emails := make(map[string]bool, len(records))
	for i, u := range records {
		report := func(kind, value string) {
			summary.Problems = append(summary.Problems, CheckIssue{Index: i, ID: u.ID, Kind: kind, Value: value})
		}
		if u.ID > summary.MaxID {
			summary.MaxID = u.ID
		}
		if u.ID < 1 {
			report(IssueInvalidID, "")
		} else if ids[u.ID] {
			report(IssueDuplicateID, "")
		}
		ids[u.ID] = true
		if u.Name == "" {
			report(IssueMissingName, "")
		}
		if u.Age == 0 {
			report(IssueMissingAge, "")
		}
		if u.Email == "" {
			report(IssueMissingEmail, "")
		} else if emails[u.Email] {
			report(IssueDuplicateEmail, u.Email)
		}
		emails[u.Email] = true
	}
	summary.OK = len(summary.Problems) == 0
	return summary
}

// CheckCommand loads the collection from store, prints the outcome and
// returns the process exit code: 0 clean, 1 load failure, 10 violations.
func CheckCommand(ctx context.Context, store users.Store, opts CheckOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	records, err := store.ReadAll(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
		return 1
	}
	summary := Inspect(records)
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "check: encode json: %v\n", err)
			return 1
		}
	} else {
		renderCheckHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return 10
	}
	return 0
}

func renderCheckHuman(w io.Writer, summary CheckSummary) {
	_, _ = fmt.Fprintf(w, "records: %d, max id: %d\n", summary.Records, summary.MaxID)
	if summary.OK {
		_, _ = fmt.Fprintln(w, "OK")
		return
	}
	for _, p := range summary.Problems {
		if p.Value != "" {
			_, _ = fmt.Fprintf(w, "#%d id=%d %s (%s)\n", p.Index, p.ID, p.Kind, p.Value)
			continue
		}
		_, _ = fmt.Fprintf(w, "#%d id=%d %s\n", p.Index, p.ID, p.Kind)
	}
}
