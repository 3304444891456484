package admin

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
	"golang.org/x/exp/slices"
)

const (
	FilterHeaderBuild = "filter:admin.header.build"
	RequestPage       = "admin.plugins.openai"
	RequestGet        = "admin.plugins.openai.settings.get"
	RequestSave       = "admin.plugins.openai.settings.save"

	Title = "OpenAI"
)

var log = logger.New("admin")

var Navigation = NavigationEntry{
	Route: "/plugins/openai",
	Icon:  "fa-robot",
	Name:  Title,
}

type (
	Plugin struct {
		settingsService model.SettingsService
		groupService    model.GroupService
	}

	NavigationEntry struct {
		Route string `json:"route"`
		Icon  string `json:"icon"`
		Name  string `json:"name"`
	}

	Page struct {
		Title  string        `json:"title"`
		Groups []model.Group `json:"groups"`
	}

	SaveResult struct {
		Saved    bool     `json:"saved"`
		Warnings []string `json:"warnings,omitempty"`
	}
)

func New(settingsService model.SettingsService, groupService model.GroupService) *Plugin {
	return &Plugin{
		settingsService: settingsService,
		groupService:    groupService,
	}
}

func (*Plugin) Name() string {
	return "admin"
}

func (p *Plugin) Handlers() []plugin.Handler {
	return []plugin.Handler{
		&plugin.FilterHandler{
			Trigger:     FilterHeaderBuild,
			HandlerFunc: p.onHeaderBuild,
		},
		&plugin.RequestHandler{
			Trigger:     RequestPage,
			HandlerFunc: p.onPage,
		},
		&plugin.RequestHandler{
			Trigger:     RequestGet,
			HandlerFunc: p.onGetSettings,
		},
		&plugin.RequestHandler{
			Trigger:     RequestSave,
			HandlerFunc: p.onSaveSettings,
		},
	}
}

func (p *Plugin) onHeaderBuild(c plugin.HookContext) (any, error) {
	var header map[string]json.RawMessage
	if err := c.Bind(&header); err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if raw, ok := header["plugins"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: plugins: %v", plugin.ErrBadPayload, err)
		}
	}

	entry, err := json.Marshal(Navigation)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(append(entries, entry))
	if err != nil {
		return nil, err
	}
	header["plugins"] = encoded

	return header, nil
}

// onPage returns the data of the settings page, system groups first.
func (p *Plugin) onPage(c plugin.HookContext) (any, error) {
	groups, err := p.groupService.GetNonPrivilegeGroups(c)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(groups, func(a, b model.Group) int {
		switch {
		case a.System == b.System:
			return 0
		case a.System:
			return -1
		default:
			return 1
		}
	})

	return Page{
		Title:  Title,
		Groups: groups,
	}, nil
}

func (p *Plugin) onGetSettings(c plugin.HookContext) (any, error) {
	return p.settingsService.GetRaw(c)
}

func (p *Plugin) onSaveSettings(c plugin.HookContext) (any, error) {
	var values map[string]string
	if err := c.Bind(&values); err != nil {
		return nil, err
	}

	var unknown []string
	for key := range values {
		if !slices.Contains(model.SettingKeys, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("%w: unknown settings %s", plugin.ErrBadPayload, strings.Join(unknown, ", "))
	}

	current, err := p.settingsService.GetRaw(c)
	if err != nil {
		return nil, err
	}
	for key, value := range values {
		current[key] = value
	}

	result := SaveResult{Saved: true}
	if _, err := model.ParseSettings(current); err != nil {
		result.Warnings = strings.Split(err.Error(), "\n")
	}

	if err := p.settingsService.Set(c, values); err != nil {
		return nil, err
	}

	log.Info().
		Int("count", len(values)).
		Int("warnings", len(result.Warnings)).
		Msg("Saved settings")

	return result, nil
}
