package utils

import (
	"testing"

	"golang.org/x/exp/slices"
)

func TestUniqueIDs(t *testing.T) {
	t.Parallel()

	got := UniqueIDs([]int64{5, 0, 3, 5, 1, 3})
	want := []int64{1, 3, 5}
	if !slices.Equal(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}

	if got := UniqueIDs(nil); len(got) != 0 {
		t.Fatalf("got=%v", got)
	}
}

func TestEmbedGUID(t *testing.T) {
	t.Parallel()

	if got := EmbedGUID("abc"); got != " (abc)" {
		t.Fatalf("got=%q", got)
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("FORUMBOT_TEST_VALUE", "  set ")
	if got := Getenv("FORUMBOT_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("got=%q", got)
	}
	if got := Getenv("FORUMBOT_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("got=%q", got)
	}
}
