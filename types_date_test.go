package taxlot

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_SubAndAdd(t *testing.T) {
	a := NewDate(2024, time.June, 1)
	b := NewDate(2023, time.June, 1)
	if got := a.Sub(b); got != 366 { // 2024 is a leap year
		t.Errorf("Sub() = %d, want 366", got)
	}
	if got := b.Add(366); got != a {
		t.Errorf("Add(366) = %s, want %s", got, a)
	}
	if got := a.Sub(a); got != 0 {
		t.Errorf("Sub(self) = %d, want 0", got)
	}
}

func TestDate_Normalization(t *testing.T) {
	// out-of-range day/month components normalize like time.Date
	if got := NewDate(2024, time.January, 32); got != NewDate(2024, time.February, 1) {
		t.Errorf("NewDate(jan 32) = %s, want 2024-02-01", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-06-01", NewDate(2024, time.June, 1)},
		{"2024-6-1", NewDate(2024, time.June, 1)},
		{" 2024-06-01 ", NewDate(2024, time.June, 1)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDate("june 1st"); err == nil {
		t.Error("ParseDate(garbage) = nil, want error")
	}
}

func TestParseDate_Relative(t *testing.T) {
	today := Today()
	tests := []struct {
		in   string
		want Date
	}{
		{"0d", today},
		{"-30d", today.Add(-30)},
		{"+2w", today.Add(14)},
		{"-1y", NewDate(today.Year()-1, today.Month(), today.Day())},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.June, 1)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2024-06-01"` {
		t.Errorf("Marshal() = %s, want \"2024-06-01\"", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}
