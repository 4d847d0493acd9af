package roster

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      Student
		wantError bool
	}{
		{
			name: "first middle last",
			text: "John Michael Smith 20BCE10123",
			want: Student{First: "John", Middle: "Michael", Last: "Smith", Reg: "20BCE10123"},
		},
		{
			name: "single token name",
			text: "Jane 20BCE10124",
			want: Student{First: "Jane", Reg: "20BCE10124"},
		},
		{
			name: "first last",
			text: "Aarav Sharma 21MIM10001",
			want: Student{First: "Aarav", Last: "Sharma", Reg: "21MIM10001"},
		},
		{
			name: "several middle names collapse spacing",
			text: "Mohammed  Abdul   Rahman Khan 22bce10999",
			want: Student{First: "Mohammed", Middle: "Abdul Rahman", Last: "Khan", Reg: "22bce10999"},
		},
		{
			name: "surrounding whitespace is trimmed",
			text: "   Priya Nair 20BAI10033  \n",
			want: Student{First: "Priya", Last: "Nair", Reg: "20BAI10033"},
		},
		{
			name: "non-breaking space before registration number",
			text: "Priya Nair\u00a020BAI10033",
			want: Student{First: "Priya", Last: "Nair", Reg: "20BAI10033"},
		},
		{
			name: "non-breaking spaces inside name",
			text: "Priya\u00a0K\u00a0Nair 20BAI10033",
			want: Student{First: "Priya", Middle: "K", Last: "Nair", Reg: "20BAI10033"},
		},
		{
			name: "em space separator",
			text: "Jane\u200320BCE10124",
			want: Student{First: "Jane", Reg: "20BCE10124"},
		},
		{
			name:      "no registration number",
			text:      "no reg number here",
			wantError: true,
		},
		{
			name:      "registration number alone",
			text:      "20BCE10123",
			wantError: true,
		},
		{
			name:      "registration number not at end",
			text:      "John 20BCE10123 Smith",
			wantError: true,
		},
		{
			name:      "too few digits",
			text:      "John Smith 20BCE1012",
			wantError: true,
		},
		{
			name:      "glued to name",
			text:      "John20BCE10123",
			wantError: true,
		},
		{
			name:      "empty",
			text:      "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.text, got)
				}
				if !errors.Is(err, ErrNoMatch) {
					t.Errorf("Parse(%q) error = %v, want ErrNoMatch", tt.text, err)
				}
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("Parse(%q) error type = %T, want *ParseError", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRegFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"John Michael Smith 20BCE10123", "20BCE10123"},
		{"Jane 20BCE10124", "20BCE10124"},
		{"  trailing space 20BCE10125  ", "20BCE10125"},
		{"No Reg Here", "Here"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RegFromName(tt.name); got != tt.want {
				t.Errorf("RegFromName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsRegistrationNumber(t *testing.T) {
	tests := []struct {
		reg  string
		want bool
	}{
		{"20BCE10123", true},
		{"20bce10123", true},
		{"20BcE10123", true},
		{"2BCE10123", false},
		{"20BCE101234", false},
		{"20B1E10123", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.reg, func(t *testing.T) {
			if got := IsRegistrationNumber(tt.reg); got != tt.want {
				t.Errorf("IsRegistrationNumber(%q) = %v, want %v", tt.reg, got, tt.want)
			}
		})
	}
}
