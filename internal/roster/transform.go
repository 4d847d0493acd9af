package roster

import (
	"fmt"
	"strings"
)

// Kind tags what happened to a single roster line.
type Kind string

const (
	KindGenerated    Kind = "generated"
	KindNoMatch      Kind = "no_match"
	KindMissingField Kind = "missing_field"
	KindDuplicate    Kind = "duplicate"
)

// Outcome is the per-line result of the pipeline. Record is only set for
// KindGenerated; Err is set for every other kind.
type Outcome struct {
	Line    RawLine `json:"line"`
	Kind    Kind    `json:"kind"`
	Student Student `json:"student"`
	Record  Record  `json:"record"`
	Err     error   `json:"-"`
}

// Skipped reports whether the line produced no record.
func (o Outcome) Skipped() bool {
	return o.Kind != KindGenerated
}

// Generate validates a student, checks it against the existing snapshot and
// builds its record. Empty First or Reg is a validation failure; an empty
// Last is accepted. A registration number already present in existing is a
// duplicate and the existing record is left as it is.
func Generate(s Student, existing *Existing, domain string) Outcome {
	s = Student{
		First:  strings.TrimSpace(s.First),
		Middle: strings.TrimSpace(s.Middle),
		Last:   strings.TrimSpace(s.Last),
		Reg:    strings.TrimSpace(s.Reg),
	}

	switch {
	case s.First == "":
		return Outcome{Kind: KindMissingField, Student: s, Err: &ValidationError{Field: "First", Student: s}}
	case s.Reg == "":
		return Outcome{Kind: KindMissingField, Student: s, Err: &ValidationError{Field: "Reg", Student: s}}
	}

	if existing.Has(s.Reg) {
		return Outcome{Kind: KindDuplicate, Student: s, Err: fmt.Errorf("%s: %w", s.Reg, ErrDuplicate)}
	}

	return Outcome{
		Kind:    KindGenerated,
		Student: s,
		Record: Record{
			Name:  FullName(s),
			Email: Email(s, domain),
		},
	}
}

// Result is the accumulated output of Transform.
type Result struct {
	// Records is the merged set to persist: existing rows then new ones.
	Records []Record
	// New holds only the records generated in this run, in parse order.
	New []Record
	// Outcomes has one entry per input line, in input order.
	Outcomes []Outcome
}

// Count returns how many lines ended with the given kind.
func (r *Result) Count(kind Kind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Transform runs every line through parse, validate/dedup/generate and
// merge. A registration number seen twice in the same run keeps its first
// record; the later line is reported as a duplicate.
func Transform(lines []RawLine, existing *Existing, domain string) *Result {
	res := &Result{
		New:      make([]Record, 0),
		Outcomes: make([]Outcome, 0, len(lines)),
	}
	generated := make(map[string]bool)

	for _, line := range lines {
		student, err := Parse(line.Text)
		if err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{Line: line, Kind: KindNoMatch, Err: err})
			continue
		}

		out := Generate(student, existing, domain)
		out.Line = line
		if out.Kind == KindGenerated {
			if generated[out.Student.Reg] {
				out.Kind = KindDuplicate
				out.Record = Record{}
				out.Err = fmt.Errorf("%s: %w", out.Student.Reg, ErrDuplicate)
			} else {
				generated[out.Student.Reg] = true
				res.New = append(res.New, out.Record)
			}
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	res.Records = Merge(existing, res.New)
	return res
}
