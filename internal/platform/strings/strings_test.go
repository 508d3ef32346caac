package strings

import (
	"testing"

	"leadsync/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	in := []int{1, 2, 3}
	if got := IfEmpty(in, []int{9}); len(got) != 3 || got[0] != 1 {
		t.Fatalf("IfEmpty returned wrong slice: %#v", got)
	}

	var empty []string
	if got := IfEmpty(empty, []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("IfEmpty did not return default: %#v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"status":     "/status",
		"/status/":   "/status",
		" //status ": "/status",
		"a/b":        "/a/b",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q want %q", in, got, want)
		}
	}
	testkit.MustPanic(t, func() { _ = MustPrefix(" / ") })
}

func TestDeref(t *testing.T) {
	t.Parallel()

	if Deref(nil) != "" {
		t.Fatal("nil should deref to empty")
	}
	s := "cur_1"
	if Deref(&s) != "cur_1" {
		t.Fatal("wrong deref")
	}
}

func TestSquash(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  a \n\t b  ", 0, "a b"},
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 7, "this is..."},
		{"héllo wörld", 5, "héllo..."},
	}
	for _, c := range cases {
		if got := Squash(c.in, c.max); got != c.want {
			t.Fatalf("Squash(%q, %d) = %q want %q", c.in, c.max, got, c.want)
		}
	}
}
