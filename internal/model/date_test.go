package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-08-01", "2024-08-01", false},
		{" 2024-08-01 ", "2024-08-01", false},
		{"2024-08-01T23:15:00Z", "2024-08-01", false},
		{"2024-08-01T10:00:00+07:00", "2024-08-01", false},
		{"2024-08-01 10:00:00", "2024-08-01", false},
		{"01/08/2024", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() unexpected error: %v", err)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Errorf("Marshal() = %s, want %q", b, "2024-02-29")
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("Unmarshal() = %s, want %s", back, d)
	}

	if b, _ := json.Marshal(Date{}); string(b) != "null" {
		t.Errorf("zero Date marshals to %s, want null", b)
	}
}

func TestDateScan(t *testing.T) {
	want := "2024-08-01"
	sources := []any{
		time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		"2024-08-01",
		"2024-08-01 00:00:00+00:00",
		[]byte("2024-08-01"),
	}

	for _, src := range sources {
		var d Date
		if err := d.Scan(src); err != nil {
			t.Errorf("Scan(%v) unexpected error: %v", src, err)
			continue
		}
		if d.String() != want {
			t.Errorf("Scan(%v) = %s, want %s", src, d, want)
		}
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}

func TestDateValue(t *testing.T) {
	d := NewDate(time.Date(2024, 8, 1, 22, 30, 0, 0, time.UTC))
	v, err := d.Value()
	if err != nil {
		t.Fatalf("Value() unexpected error: %v", err)
	}
	if v != "2024-08-01" {
		t.Errorf("Value() = %v, want 2024-08-01", v)
	}
}
