package format

import "testing"

func TestDuration(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59, "0:59"},
		{75, "1:15"},
		{3600, "1:00:00"},
		{3725.9, "1:02:05"},
	}
	for _, c := range cases {
		if got := Duration(c.in); got != c.want {
			t.Errorf("Duration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestViewCount(t *testing.T) {
	if got := ViewCount(999); got != "999" {
		t.Errorf("got %q", got)
	}
	if got := ViewCount(1500); got != "1.5K" {
		t.Errorf("got %q", got)
	}
	if got := ViewCount(2300000); got != "2.3M" {
		t.Errorf("got %q", got)
	}
}
