package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"<b>bold</b> move", "bold move"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;", "alert(1)"},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	in := "<p></p>"
	if got := TextPtr(&in); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
}
