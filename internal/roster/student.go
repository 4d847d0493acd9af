package roster

import (
	"fmt"
	"regexp"
	"strings"
)

// entryPattern matches "<name block> <reg>" where reg is two digits, three
// letters and five digits at the very end of the line. The separator also
// accepts Unicode space separators such as U+00A0, which web pages use
// between words.
var entryPattern = regexp.MustCompile(`^(.+)[\s\p{Zs}]+([0-9]{2}[A-Za-z]{3}[0-9]{5})$`)

// regPattern matches a bare registration number.
var regPattern = regexp.MustCompile(`^[0-9]{2}[A-Za-z]{3}[0-9]{5}$`)

// RawLine is one piece of text handed over by a source, attributed to the
// batch (classroom) it came from. Batch and Index are 1-based and only used
// for logging.
type RawLine struct {
	Batch int    `json:"batch"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Student is a parsed roster entry.
type Student struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
	Reg    string `json:"reg"`
}

func (s Student) String() string {
	return fmt.Sprintf("{First:%q Middle:%q Last:%q Reg:%q}", s.First, s.Middle, s.Last, s.Reg)
}

// Parse extracts a Student from a roster line. The name block is split on
// whitespace: the first token is First, the last is Last (empty for a
// single-token name) and everything in between is Middle.
func Parse(text string) (Student, error) {
	text = strings.TrimSpace(text)
	matches := entryPattern.FindStringSubmatch(text)
	if matches == nil {
		return Student{}, &ParseError{Text: text}
	}

	parts := strings.Fields(matches[1])
	s := Student{
		First: parts[0],
		Reg:   matches[2],
	}
	if len(parts) > 1 {
		s.Last = parts[len(parts)-1]
		s.Middle = strings.Join(parts[1:len(parts)-1], " ")
	}
	return s, nil
}

// IsRegistrationNumber reports whether s has the registration number shape.
func IsRegistrationNumber(s string) bool {
	return regPattern.MatchString(s)
}

// RegFromName returns the registration number carried by a record name,
// i.e. its last whitespace-delimited token. It returns "" for a blank name.
func RegFromName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
