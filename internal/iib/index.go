package iib

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is one operator's record for a version/job pair.
type Entry struct {
	// Triggered is set when the CI trigger pipeline built an index image
	// for this operator. Documents written by older pipelines use "new-iib".
	Triggered bool   `json:"triggered"`
	IIB       string `json:"iib,omitempty"`
}

// UnmarshalJSON accepts both "triggered" and "new-iib".
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Triggered *bool  `json:"triggered"`
		NewIIB    *bool  `json:"new-iib"`
		IIB       string `json:"iib"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{IIB: raw.IIB}
	switch {
	case raw.Triggered != nil:
		e.Triggered = *raw.Triggered
	case raw.NewIIB != nil:
		e.Triggered = *raw.NewIIB
	}
	return nil
}

// Job holds the operators published for one CI job of one OCP version.
type Job struct {
	Operators map[string]Entry `json:"operators"`
}

// UnmarshalJSON decodes a job in either document layout: operators nested
// under an "operators" key next to pipeline metadata, or operators listed
// directly. Values that are not operator records are skipped.
func (j *Job) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if nested, ok := fields["operators"]; ok {
		var operators map[string]Entry
		if err := json.Unmarshal(nested, &operators); err == nil {
			j.Operators = operators
			return nil
		}
	}

	j.Operators = make(map[string]Entry, len(fields))
	for name, value := range fields {
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			continue
		}
		j.Operators[name] = entry
	}
	return nil
}

// Index maps "v<major>.<minor>" to CI job names to their published operators.
type Index map[string]map[string]Job

// Parse decodes an index document.
func Parse(data []byte) (Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse IIB index: %w", err)
	}
	return idx, nil
}

// LoadFile reads and decodes an index document from disk.
func LoadFile(path string) (Index, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read IIB index %s: %w", path, err)
	}
	return Parse(data)
}

// Lookup returns the override image of operator in the versionKey/job pair.
//
// A missing pair is a *ResolutionError. A missing or untriggered operator
// yields "" and no error.
func (idx Index) Lookup(versionKey, job, operator string) (string, error) {
	jobs, ok := idx[versionKey]
	if !ok {
		return "", &ResolutionError{VersionKey: versionKey, Job: job}
	}
	j, ok := jobs[job]
	if !ok {
		return "", &ResolutionError{VersionKey: versionKey, Job: job}
	}
	entry, ok := j.Operators[operator]
	if !ok || !entry.Triggered {
		return "", nil
	}
	return entry.IIB, nil
}

// ResolutionError reports a version/job pair missing from the index.
type ResolutionError struct {
	VersionKey string
	Job        string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("missing %s / %s in IIB index", e.VersionKey, e.Job)
}
