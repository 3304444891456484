package access

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Brawl345/forumbot/model"
)

type fakeUsers struct {
	model.UserService
	reputation int64
	err        error
	calls      int
}

func (f *fakeUsers) GetReputation(context.Context, int64) (int64, error) {
	f.calls++
	return f.reputation, f.err
}

type fakeGroups struct {
	model.GroupService
	member bool
	calls  int
	asked  []string
}

func (f *fakeGroups) IsMemberOfAny(_ context.Context, _ int64, groups []string) (bool, error) {
	f.calls++
	f.asked = groups
	return f.member, nil
}

type fakeNotifier struct {
	alerts []model.Alert
	err    error
}

func (f *fakeNotifier) Alert(_ context.Context, _ int64, alert model.Alert) error {
	f.alerts = append(f.alerts, alert)
	return f.err
}

func (f *fakeNotifier) NotifyNew(context.Context, int64, string, any) error {
	return nil
}

func (f *fakeNotifier) NotifyTopic(context.Context, int64, int64, string, any) error {
	return nil
}

func TestGate_CanUse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		reputation   int64
		member       bool
		settings     func(*model.Settings)
		silent       bool
		want         bool
		wantNotice   string
		wantRepCalls int
	}{
		{
			name: "no restrictions",
			want: true,
		},
		{
			name:       "reputation too low",
			reputation: 4,
			settings:   func(s *model.Settings) { s.MinimumReputation = 5 },
			wantNotice: "reputation",
			// group check is not reached
			wantRepCalls: 1,
		},
		{
			name:         "reputation equal to minimum",
			reputation:   5,
			settings:     func(s *model.Settings) { s.MinimumReputation = 5 },
			want:         true,
			wantRepCalls: 1,
		},
		{
			name:       "not in allowed group",
			settings:   func(s *model.Settings) { s.AllowedGroups = []string{"vip"} },
			wantNotice: "group",
		},
		{
			name:     "in allowed group",
			member:   true,
			settings: func(s *model.Settings) { s.AllowedGroups = []string{"vip"} },
			want:     true,
		},
		{
			name:     "silent denial",
			settings: func(s *model.Settings) { s.AllowedGroups = []string{"vip"} },
			silent:   true,
		},
		{
			name:       "malformed group list",
			member:     true,
			settings:   func(s *model.Settings) { s.AllowedGroupsInvalid = true },
			wantNotice: "misconfigured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := &fakeUsers{reputation: tt.reputation}
			groups := &fakeGroups{member: tt.member}
			notifier := &fakeNotifier{}
			settings := model.DefaultSettings()
			if tt.settings != nil {
				tt.settings(&settings)
			}

			got, err := NewGate(users, groups, notifier).CanUse(context.Background(), 7, settings, tt.silent)
			if err != nil {
				t.Fatalf("CanUse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanUse=%v, want %v", got, tt.want)
			}
			if users.calls != tt.wantRepCalls {
				t.Fatalf("GetReputation calls=%d, want %d", users.calls, tt.wantRepCalls)
			}

			if tt.wantNotice == "" {
				if len(notifier.alerts) != 0 {
					t.Fatalf("unexpected alerts: %+v", notifier.alerts)
				}
				return
			}
			if len(notifier.alerts) != 1 {
				t.Fatalf("alerts=%+v", notifier.alerts)
			}
			if !strings.Contains(notifier.alerts[0].Message, tt.wantNotice) {
				t.Fatalf("alert message=%q, want it to mention %q", notifier.alerts[0].Message, tt.wantNotice)
			}
		})
	}
}

func TestGate_ReputationFailureSkipsGroups(t *testing.T) {
	t.Parallel()

	groups := &fakeGroups{member: true}
	settings := model.DefaultSettings()
	settings.MinimumReputation = 10
	settings.AllowedGroups = []string{"vip"}

	ok, err := NewGate(&fakeUsers{reputation: 1}, groups, nil).CanUse(context.Background(), 1, settings, true)
	if err != nil || ok {
		t.Fatalf("CanUse=%v err=%v", ok, err)
	}
	if groups.calls != 0 {
		t.Fatalf("IsMemberOfAny called %d times", groups.calls)
	}
}

func TestGate_StoreError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("db down")
	settings := model.DefaultSettings()
	settings.MinimumReputation = 1

	_, err := NewGate(&fakeUsers{err: wantErr}, &fakeGroups{}, nil).CanUse(context.Background(), 1, settings, false)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err=%v", err)
	}
}

func TestGate_NotifierErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	settings := model.DefaultSettings()
	settings.AllowedGroups = []string{"vip"}
	notifier := &fakeNotifier{err: errors.New("redis down")}

	ok, err := NewGate(&fakeUsers{}, &fakeGroups{}, notifier).CanUse(context.Background(), 1, settings, false)
	if err != nil || ok {
		t.Fatalf("CanUse=%v err=%v", ok, err)
	}
}
