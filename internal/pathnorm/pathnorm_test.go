package pathnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"/a/b/c", "/a/b/c"},
		{"a/./b", "a/b"},
		{"/a/b/../c", "/a/c"},
		{"../a", "a"},
		{"/../a", "/a"},
		{"a/b/", "a/b"},
		{"//a//b", "/a/b"},
		{"./a/./b/..", "a"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"/a/b/../c/./d", "x/../../y", "/////z"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestJoin(t *testing.T) {
	cases := []struct {
		dir, file, want string
	}{
		{"/src/foo", "bar.c", "/src/foo/bar.c"},
		{"", "bar.c", "bar.c"},
		{"/src/foo", "/abs/bar.c", "/abs/bar.c"},
		{"/src/foo/../baz", "bar.c", "/src/baz/bar.c"},
	}
	for _, c := range cases {
		if got := Join(c.dir, c.file); got != c.want {
			t.Errorf("Join(%q, %q) = %q, want %q", c.dir, c.file, got, c.want)
		}
	}
}
