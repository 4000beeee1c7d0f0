package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+972 52-123-4567", "+972521234567"},
		{"052-123-4567", "+972521234567"},
		{"  ", ""},
		{"not a number", "not a number"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePtrDropsBlank(t *testing.T) {
	blank := "   "
	if got := NormalizePtr(&blank); got != nil {
		t.Fatalf("expected nil for blank input, got %q", *got)
	}
	if got := NormalizePtr(nil); got != nil {
		t.Fatalf("expected nil for nil input")
	}
}
