package source

import "testing"

func TestSpanString(t *testing.T) {
	cases := []struct {
		span Span
		want string
	}{
		{Span{}, "<unknown>"},
		{Span{File: "main.jag"}, "main.jag"},
		{Span{File: "main.jag", Line: 3}, "main.jag:3"},
		{Span{File: "main.jag", Line: 3, Column: 7}, "main.jag:3:7"},
	}
	for _, tc := range cases {
		if got := tc.span.String(); got != tc.want {
			t.Errorf("Span%+v.String() = %q, want %q", tc.span, got, tc.want)
		}
	}
	if !(Span{}).IsZero() {
		t.Error("expected zero span to report IsZero")
	}
}
