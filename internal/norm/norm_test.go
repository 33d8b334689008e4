package norm

import "testing"

func TestScaleBounds(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{500, 500, 4000, 0.0},
		{4000, 500, 4000, 1.0},
		{2250, 500, 4000, 0.5},
		{-100, 500, 4000, 0.0},
		{99999, 500, 4000, 1.0},
	}

	for _, c := range cases {
		got := Scale(c.value, c.min, c.max)
		if got != c.want {
			t.Fatalf("Scale(%v, %v, %v) = %v, want %v", c.value, c.min, c.max, got, c.want)
		}
	}
}

func TestScaleMonotonic(t *testing.T) {
	prev := -1.0
	for x := -500.0; x <= 5000.0; x += 25.0 {
		got := Scale(x, 500, 4000)
		if got < prev {
			t.Fatalf("Scale not monotonic at x=%v: %v < %v", x, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("Scale(%v) = %v out of [0,1]", x, got)
		}
		prev = got
	}
}

func TestScaleDegenerateRange(t *testing.T) {
	if got := Scale(1.0, 2.0, 2.0); got != 0.5 {
		t.Fatalf("Scale with empty range = %v, want 0.5", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0.05, 0.95); got != 0.95 {
		t.Fatalf("Clamp high = %v", got)
	}
	if got := Clamp(-3, 0.05, 0.95); got != 0.05 {
		t.Fatalf("Clamp low = %v", got)
	}
	if got := Clamp(0.4, 0.05, 0.95); got != 0.4 {
		t.Fatalf("Clamp inside = %v", got)
	}
}

func TestPlausibleMatchID(t *testing.T) {
	valid := []string{
		"1-abc4ef01-2345-6789-abcd-ef0123456789",
		"abc4ef01-2345-6789-abcd-ef0123456789",
		"ABCDEF0123456789ABCDEF01",
		"  1-abc4ef01-2345-6789-abcd-ef0123456789  ",
	}
	for _, id := range valid {
		if !PlausibleMatchID(id) {
			t.Fatalf("expected plausible: %q", id)
		}
	}

	invalid := []string{
		"",
		"abc123",
		"not-a-match-id-with-letters-like-xyz",
		"12345",
		"g0000000000000000000000000",
	}
	for _, id := range invalid {
		if PlausibleMatchID(id) {
			t.Fatalf("expected implausible: %q", id)
		}
	}
}

func TestCanonicalSide(t *testing.T) {
	cases := map[string]string{
		"ct":                "CT",
		" CT ":              "CT",
		"counter_terrorist": "CT",
		"COUNTER-TERRORIST": "CT",
		"terrorists":        "T",
		"t":                 "T",
		"":                  "",
		"spectator":         "",
	}
	for in, want := range cases {
		if got := CanonicalSide(in); got != want {
			t.Fatalf("CanonicalSide(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalNick(t *testing.T) {
	cases := map[string]string{
		"S1mple":      "s1mple",
		" s1 mple\t":  "s1mple",
		"NiKo\n":      "niko",
		"donk  ": "donk",
	}
	for in, want := range cases {
		if got := CanonicalNick(in); got != want {
			t.Fatalf("CanonicalNick(%q) = %q, want %q", in, got, want)
		}
	}
}
