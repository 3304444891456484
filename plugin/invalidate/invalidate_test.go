package invalidate

import (
	"context"
	"testing"

	"github.com/Brawl345/forumbot/plugin/plugintest"
	"golang.org/x/exp/slices"
)

type fakeClearer struct {
	cleared [][]int64
}

func (f *fakeClearer) ClearSummary(_ context.Context, tids ...int64) error {
	f.cleared = append(f.cleared, tids)
	return nil
}

func TestInvalidate_RegistersAllHooks(t *testing.T) {
	t.Parallel()

	p := New(&plugintest.Posts{}, &fakeClearer{})
	for _, hook := range Hooks {
		if plugintest.Find(p, hook) == nil {
			t.Fatalf("no handler for %s", hook)
		}
	}
}

func TestInvalidate_ClearsTopics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hook    string
		payload any
		want    []int64
	}{
		{
			name:    "new post",
			hook:    "action:post.save",
			payload: map[string]any{"post": map[string]any{"pid": 1, "tid": 3}},
			want:    []int64{3},
		},
		{
			name:    "moved post clears source and destination",
			hook:    "action:post.move",
			payload: map[string]any{"post": map[string]any{"pid": 1, "tid": 3}, "tid": 8},
			want:    []int64{3, 8},
		},
		{
			name: "owner change of several posts",
			hook: "action:post.changeOwner",
			payload: map[string]any{"posts": []map[string]any{
				{"pid": 1, "tid": 4}, {"pid": 2, "tid": 4}, {"pid": 3, "tid": 2},
			}},
			want: []int64{2, 4},
		},
		{
			name:    "post without tid is looked up",
			hook:    "action:post.delete",
			payload: map[string]any{"post": map[string]any{"pid": 77}},
			want:    []int64{6},
		},
		{
			name:    "purged topic",
			hook:    "action:topic.purge",
			payload: map[string]any{"topic": map[string]any{"tid": 5}},
			want:    []int64{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clearer := &fakeClearer{}
			p := New(&plugintest.Posts{Tids: map[int64]int64{77: 6}}, clearer)

			if _, err := plugintest.Find(p, tt.hook).Run(plugintest.Context(tt.hook, tt.payload)); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if len(clearer.cleared) != 1 || !slices.Equal(clearer.cleared[0], tt.want) {
				t.Fatalf("cleared=%v, want %v", clearer.cleared, tt.want)
			}
		})
	}
}

func TestInvalidate_NoTopic(t *testing.T) {
	t.Parallel()

	clearer := &fakeClearer{}
	p := New(&plugintest.Posts{}, clearer)

	if _, err := plugintest.Find(p, "action:post.edit").Run(plugintest.Context("action:post.edit", map[string]any{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(clearer.cleared) != 0 {
		t.Fatalf("cleared=%v", clearer.cleared)
	}
}
