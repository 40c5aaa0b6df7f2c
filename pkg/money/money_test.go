package money

import "testing"

func TestParse_Strings(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		cents int64
		ok    bool
	}{
		{"plain_dollars", "$1,250", 125000, true},
		{"usd_prefix", "USD 2,400.00", 240000, true},
		{"us_dollar_prefix", "US$ 99", 9900, true},
		{"bare_number", "1250", 125000, true},
		{"single_decimal", "$12.5", 1250, true},
		{"two_decimals", "$12.55", 1255, true},
		{"embedded_markup", `<span class="price">$3,400</span>`, 340000, true},
		{"first_match_wins", "$800 - $1,200", 80000, true},
		{"empty", "", 0, false},
		{"no_digits", "price on request", 0, false},
		{"only_markup", "<div></div>", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := Parse(tt.in)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && a.Cents() != tt.cents {
				t.Errorf("Parse(%q) = %d cents, want %d", tt.in, a.Cents(), tt.cents)
			}
		})
	}
}

func TestParse_Numerics(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		cents int64
	}{
		{"int", 1250, 125000},
		{"int64", int64(99), 9900},
		{"float_whole", 2400.0, 240000},
		{"float_fraction", 1250.5, 125050},
		{"float_binary_noise", 0.1 + 0.2, 30}, // string round-trip keeps this $0.30
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := Parse(tt.in)
			if !ok {
				t.Fatalf("Parse(%v) failed", tt.in)
			}
			if a.Cents() != tt.cents {
				t.Errorf("Parse(%v) = %d cents, want %d", tt.in, a.Cents(), tt.cents)
			}
		})
	}

	if _, ok := Parse(nil); ok {
		t.Error("Parse(nil) should fail")
	}
	if _, ok := Parse(struct{}{}); ok {
		t.Error("Parse(struct{}{}) should fail")
	}
}

func TestAmount_String(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{100, "$1"},
		{125000, "$1,250"},
		{125050, "$1,250.50"},
		{1255, "$12.55"},
		{1250, "$12.50"},
		{100000000, "$1,000,000"},
		{20000000000, "$200,000,000"},
	}

	for _, tt := range tests {
		if got := FromCents(tt.cents).String(); got != tt.want {
			t.Errorf("FromCents(%d).String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestSanitize_RoundTrip(t *testing.T) {
	// formatMoney(parseMoney(s)) canonicalizes valid money grammar strings.
	tests := []struct {
		in   string
		want string
	}{
		{"$1,250.00", "$1,250"},
		{"1250", "$1,250"},
		{"USD 1,250.50", "$1,250.50"},
	}

	for _, tt := range tests {
		got := Sanitize(tt.in)
		if got == nil {
			t.Fatalf("Sanitize(%q) = nil", tt.in)
		}
		if *got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, *got, tt.want)
		}
	}
}

func TestSanitize_PlausibilityBand(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"below_one_dollar", "$0.99"},
		{"zero", 0},
		{"above_cap", "$200,000,001"},
		{"phone_number_scale", 2125551212000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != nil {
				t.Errorf("Sanitize(%v) = %q, want nil", tt.in, *got)
			}
		})
	}

	// Band edges are accepted.
	for _, in := range []string{"$1", "$200,000,000"} {
		if Sanitize(in) == nil {
			t.Errorf("Sanitize(%q) = nil, want value", in)
		}
	}
}

func TestSanitizeRange(t *testing.T) {
	t.Run("ordered", func(t *testing.T) {
		lo, hi := SanitizeRange("800", "1,200")
		if lo == nil || hi == nil {
			t.Fatal("expected both bounds")
		}
		if *lo != "$800" || *hi != "$1,200" {
			t.Errorf("got (%q, %q)", *lo, *hi)
		}
	})

	t.Run("inverted_swaps", func(t *testing.T) {
		lo, hi := SanitizeRange("1,200", "800")
		if lo == nil || hi == nil {
			t.Fatal("expected both bounds after swap")
		}
		if *lo != "$800" || *hi != "$1,200" {
			t.Errorf("got (%q, %q), want swapped order", *lo, *hi)
		}
	})

	t.Run("one_bad_bound_voids_pair", func(t *testing.T) {
		lo, hi := SanitizeRange("800", "not a price")
		if lo != nil || hi != nil {
			t.Error("expected (nil, nil) when one bound fails")
		}
	})

	t.Run("implausible_bound_voids_pair", func(t *testing.T) {
		lo, hi := SanitizeRange("$0.50", "800")
		if lo != nil || hi != nil {
			t.Error("expected (nil, nil) for sub-dollar low bound")
		}
	})
}

func TestDisplay(t *testing.T) {
	v := "$1,250"
	if got := Display(&v); got != "$1,250" {
		t.Errorf("Display(&%q) = %q", v, got)
	}
	if got := Display(nil); got != "—" {
		t.Errorf("Display(nil) = %q, want em-dash sentinel", got)
	}
	junk := ".price { color: red }"
	if got := Display(&junk); got != "—" {
		t.Errorf("Display(css) = %q, want em-dash sentinel", got)
	}
}
