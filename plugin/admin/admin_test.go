package admin

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
	"github.com/Brawl345/forumbot/plugin/plugintest"
)

func TestAdmin_HeaderBuild(t *testing.T) {
	t.Parallel()

	p := New(plugintest.NewSettings(nil), &plugintest.Groups{})
	header := map[string]any{
		"plugins":  []map[string]string{{"route": "/plugins/other"}},
		"settings": []string{"general"},
	}

	got, err := plugintest.Find(p, FilterHeaderBuild).Run(plugintest.Context(FilterHeaderBuild, header))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	encoded, _ := json.Marshal(got)
	var result struct {
		Plugins  []NavigationEntry `json:"plugins"`
		Settings []string          `json:"settings"`
	}
	if err := json.Unmarshal(encoded, &result); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(result.Plugins) != 2 || result.Plugins[1] != Navigation {
		t.Fatalf("plugins=%+v", result.Plugins)
	}
	if len(result.Settings) != 1 {
		t.Fatalf("settings=%v", result.Settings)
	}
}

func TestAdmin_PageSortsSystemGroupsFirst(t *testing.T) {
	t.Parallel()

	groups := &plugintest.Groups{List: []model.Group{
		{Name: "Readers"},
		{Name: "administrators", System: true},
		{Name: "Writers"},
		{Name: "Global Moderators", System: true},
	}}
	p := New(plugintest.NewSettings(nil), groups)

	got, err := plugintest.Find(p, RequestPage).Run(plugintest.Context(RequestPage, map[string]any{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	page := got.(Page)
	var names []string
	for _, g := range page.Groups {
		names = append(names, g.Name)
	}
	want := []string{"administrators", "Global Moderators", "Readers", "Writers"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("groups=%v, want %v", names, want)
		}
	}
	if page.Title != Title {
		t.Fatalf("title=%q", page.Title)
	}
}

func TestAdmin_SaveSettings(t *testing.T) {
	t.Parallel()

	settings := plugintest.NewSettings(map[string]string{model.KeyModel: "gpt-4o"})
	p := New(settings, &plugintest.Groups{})

	got, err := plugintest.Find(p, RequestSave).Run(plugintest.Context(RequestSave, map[string]string{
		model.KeyAPIKey:        "sk-new",
		model.KeyAllowedGroups: `["vip"`,
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	result := got.(SaveResult)
	if !result.Saved || len(result.Warnings) != 1 {
		t.Fatalf("result=%+v", result)
	}
	if settings.Raw[model.KeyAPIKey] != "sk-new" || settings.Raw[model.KeyModel] != "gpt-4o" {
		t.Fatalf("raw=%v", settings.Raw)
	}

	raw, err := plugintest.Find(p, RequestGet).Run(plugintest.Context(RequestGet, map[string]any{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if raw.(map[string]string)[model.KeyAPIKey] != "sk-new" {
		t.Fatalf("get=%v", raw)
	}
}

func TestAdmin_SaveRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	settings := plugintest.NewSettings(nil)
	p := New(settings, &plugintest.Groups{})

	_, err := plugintest.Find(p, RequestSave).Run(plugintest.Context(RequestSave, map[string]string{"colour": "red"}))
	if !errors.Is(err, plugin.ErrBadPayload) {
		t.Fatalf("err=%v", err)
	}
	if len(settings.Saved) != 0 {
		t.Fatalf("saved=%v", settings.Saved)
	}
}
