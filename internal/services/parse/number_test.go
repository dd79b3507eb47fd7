package parse

import "testing"

func TestFirstNumberThousands(t *testing.T) {
	v, ok := FirstNumber("The estimate is 1,234,567.89 HKD")
	if !ok {
		t.Fatalf("expected ok")
	}
	if v != 1234567.89 {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestFirstNumberBare(t *testing.T) {
	v, ok := FirstNumber("8500000")
	if !ok || v != 8500000 {
		t.Fatalf("unexpected %v %v", v, ok)
	}
}

func TestFirstNumberNone(t *testing.T) {
	if _, ok := FirstNumber("no digits here"); ok {
		t.Fatalf("expected no match")
	}
}

func TestInBounds(t *testing.T) {
	cases := []struct {
		v  float64
		ok bool
	}{
		{0, false},
		{-1, false},
		{1, true},
		{8_500_000, true},
		{999_999_999, true},
		{1_000_000_000, false},
		{2_000_000_000, false},
	}
	for _, c := range cases {
		if got := InBounds(c.v); got != c.ok {
			t.Fatalf("InBounds(%v) = %v, want %v", c.v, got, c.ok)
		}
	}
}

func TestContainsSentinel(t *testing.T) {
	for _, s := range []string{"NOT_AVAILABLE", "not_available", "NOT AVAILABLE", "Sorry, not available."} {
		if !ContainsSentinel(s) {
			t.Fatalf("expected sentinel in %q", s)
		}
	}
	for _, s := range []string{"8500000", "available", "NOTAVAILABLE"} {
		if ContainsSentinel(s) {
			t.Fatalf("did not expect sentinel in %q", s)
		}
	}
}
