package roster

import (
	"strings"
)

// Record is one row of the output file.
type Record struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Reg returns the registration number the record is keyed by.
func (r Record) Reg() string {
	return RegFromName(r.Name)
}

// Existing is an immutable snapshot of previously written records keyed by
// registration number. Records keep the position of the first row carrying
// their key; a later row with the same key replaces the value.
type Existing struct {
	order   []string
	records map[string]Record
}

// LoadExisting builds a snapshot from previously written rows. Rows whose
// Name is blank carry no key and are dropped. A nil or empty input yields an
// empty snapshot.
func LoadExisting(rows []Record) *Existing {
	ex := &Existing{
		order:   make([]string, 0, len(rows)),
		records: make(map[string]Record, len(rows)),
	}
	for _, row := range rows {
		reg := strings.TrimSpace(row.Reg())
		if reg == "" {
			continue
		}
		if _, seen := ex.records[reg]; !seen {
			ex.order = append(ex.order, reg)
		}
		ex.records[reg] = row
	}
	return ex
}

// Len returns the number of distinct registration numbers.
func (e *Existing) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}

// Has reports whether reg is already known. The comparison is case-sensitive.
func (e *Existing) Has(reg string) bool {
	if e == nil {
		return false
	}
	_, ok := e.records[reg]
	return ok
}

// Get returns the record stored under reg.
func (e *Existing) Get(reg string) (Record, bool) {
	if e == nil {
		return Record{}, false
	}
	r, ok := e.records[reg]
	return r, ok
}

// Records returns the snapshot's records in file order.
func (e *Existing) Records() []Record {
	if e == nil {
		return nil
	}
	out := make([]Record, 0, len(e.order))
	for _, reg := range e.order {
		out = append(out, e.records[reg])
	}
	return out
}

// Keys returns the snapshot's registration numbers in file order.
func (e *Existing) Keys() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// FullName joins the non-empty name parts and the registration number with
// single spaces.
func FullName(s Student) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.First, s.Middle, s.Last, s.Reg} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Email builds "first.reg" + domain. Only lower-casing is applied; First is
// passed through otherwise untouched.
func Email(s Student, domain string) string {
	return strings.ToLower(strings.TrimSpace(s.First)) + "." + strings.ToLower(strings.TrimSpace(s.Reg)) + domain
}

// Merge returns the existing records in file order followed by fresh records
// in the order they were generated.
func Merge(existing *Existing, fresh []Record) []Record {
	out := make([]Record, 0, existing.Len()+len(fresh))
	out = append(out, existing.Records()...)
	out = append(out, fresh...)
	return out
}
