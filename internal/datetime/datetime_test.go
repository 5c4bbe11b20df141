package datetime

import "testing"

func TestStringRoundTrip(t *testing.T) {
	d := DateTime{Year: 2026, Month: 7, Day: 31, Hour: 10, Min: 15, Sec: 2}
	s := d.String()
	if s != "2026-07-31 10:15:02" {
		t.Fatalf("String() = %q", s)
	}
	got, err := Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != d {
		t.Fatalf("Parse(%q) = %+v, want %+v", s, got, d)
	}
}

func TestCompare(t *testing.T) {
	earlier := DateTime{Year: 2026, Month: 1, Day: 1}
	later := DateTime{Year: 2026, Month: 1, Day: 2}

	if !earlier.Before(later) {
		t.Fatal("expected earlier.Before(later)")
	}
	if !later.After(earlier) {
		t.Fatal("expected later.After(earlier)")
	}
	if earlier.Compare(earlier) != 0 {
		t.Fatal("expected equal DateTimes to compare to 0")
	}
}
