package utils

import "testing"

func TestParsePLN(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"10", 1000, false},
		{"10.00", 1000, false},
		{"10.01", 1001, false},
		{"10.5", 1050, false},
		{"0.99", 99, false},
		{"10,01", 1001, false},
		{" 50 ", 5000, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10.001", 0, true},
		{"-5", 0, true},
		{".50", 0, true},
		{"+10", 0, true},
		{"1.+5", 0, true},
		{"1.-5", 0, true},
		{"-0.50", 0, true},
	}
	for _, c := range cases {
		got, err := ParsePLN(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParsePLN(%q) expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePLN(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePLN(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatPLN(t *testing.T) {
	if got := FormatPLN(1001); got != "10.01" {
		t.Errorf("FormatPLN(1001) = %q", got)
	}
	if got := FormatPLN(99); got != "0.99" {
		t.Errorf("FormatPLN(99) = %q", got)
	}
	if got := FormatPLN(-1500); got != "-15.00" {
		t.Errorf("FormatPLN(-1500) = %q", got)
	}
}
