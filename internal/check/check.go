// Package check inspects XML files without modifying them.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/younessemlali/gerflor-xml-cleaner/internal/scrub"
)

// Status classifies a single file.
type Status int

const (
	Clean Status = iota // well-formed, no target element carries text
	Dirty               // well-formed, would be modified by a clean run
	Fail                // unreadable or malformed
)

func (s Status) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome for a single file.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all file results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any file is unreadable or malformed.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Run checks each file in order: a dry pass that reports what a clean run
// would do, writing nothing.
func Run(scrubber *scrub.Scrubber, paths []string) Report {
	var report Report
	for _, path := range paths {
		report.Results = append(report.Results, checkFile(scrubber, path))
	}
	return report
}

func checkFile(scrubber *scrub.Scrubber, path string) Result {
	name := filepath.Base(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{Name: name, Status: Fail, Detail: err.Error()}
	}

	_, mods, err := scrubber.Clean(raw)
	if err != nil {
		return Result{Name: name, Status: Fail, Detail: err.Error()}
	}
	if mods == 0 {
		return Result{Name: name, Status: Clean, Detail: "no target text"}
	}
	return Result{Name: name, Status: Dirty, Detail: fmt.Sprintf("%d element(s) carry text", mods)}
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "xmlclean check\n\n  no files checked\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("xmlclean check\n\n")

	var clean, dirty, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Clean:
			clean++
		case Dirty:
			dirty++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-5s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d clean, %d dirty, %d failed\n", clean, dirty, failures)
	return b.String()
}
