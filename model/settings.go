package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

const (
	SettingsHash = "openai"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultModel          = "gpt-3.5-turbo"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultSystemPrompt   = "You are a helpful assistant"
	DefaultRequestTimeout = 2 * time.Minute
)

// Raw setting keys as stored by the admin page.
const (
	KeyAPIKey                = "apikey"
	KeyProvider              = "provider"
	KeyModel                 = "model"
	KeyUsername              = "chatgpt-username"
	KeyEnablePrivateMessages = "enablePrivateMessages"
	KeyMinimumReputation     = "minimumReputation"
	KeyAllowedGroups         = "allowedGroups"
	KeySystemPrompt          = "systemPrompt"
	KeyRequestTimeout        = "requestTimeout"
)

var SettingKeys = []string{
	KeyAPIKey,
	KeyProvider,
	KeyModel,
	KeyUsername,
	KeyEnablePrivateMessages,
	KeyMinimumReputation,
	KeyAllowedGroups,
	KeySystemPrompt,
	KeyRequestTimeout,
}

type (
	SettingsService interface {
		Get(ctx context.Context) (Settings, error)
		GetRaw(ctx context.Context) (map[string]string, error)
		Set(ctx context.Context, values map[string]string) error
	}

	PluginSetting struct {
		Name  string `db:"name"`
		Value string `db:"value"`
	}

	Settings struct {
		APIKey                string
		Provider              string
		Model                 string
		Username              string
		EnablePrivateMessages bool
		MinimumReputation     int64
		AllowedGroups         []string
		// AllowedGroupsInvalid is set when the stored group list could not be parsed.
		AllowedGroupsInvalid bool
		SystemPrompt         string
		RequestTimeout       time.Duration
	}
)

func DefaultSettings() Settings {
	return Settings{
		Provider:              ProviderOpenAI,
		Model:                 DefaultModel,
		EnablePrivateMessages: true,
		SystemPrompt:          DefaultSystemPrompt,
		RequestTimeout:        DefaultRequestTimeout,
	}
}

// ParseSettings merges raw values over the defaults. Problems with single values
// are reported in the returned error, the returned settings are usable either way.
func ParseSettings(raw map[string]string) (Settings, error) {
	settings := DefaultSettings()
	var errs []error

	settings.APIKey = strings.TrimSpace(raw[KeyAPIKey])
	settings.Username = strings.TrimSpace(raw[KeyUsername])

	if provider := strings.ToLower(strings.TrimSpace(raw[KeyProvider])); provider != "" {
		switch provider {
		case ProviderOpenAI, ProviderGemini:
			settings.Provider = provider
		default:
			errs = append(errs, fmt.Errorf("unknown provider %q", provider))
		}
	}

	if m := strings.TrimSpace(raw[KeyModel]); m != "" {
		settings.Model = m
	} else if settings.Provider == ProviderGemini {
		settings.Model = DefaultGeminiModel
	}

	if raw[KeyEnablePrivateMessages] == "off" {
		settings.EnablePrivateMessages = false
	}

	if value, ok := raw[KeySystemPrompt]; ok {
		settings.SystemPrompt = value
	}

	if value := strings.TrimSpace(raw[KeyMinimumReputation]); value != "" {
		minimumReputation, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid minimumReputation %q: %w", value, err))
		} else {
			settings.MinimumReputation = minimumReputation
		}
	}

	if value := strings.TrimSpace(raw[KeyAllowedGroups]); value != "" {
		var groups []string
		if err := json.Unmarshal([]byte(value), &groups); err != nil {
			settings.AllowedGroupsInvalid = true
			errs = append(errs, fmt.Errorf("invalid allowedGroups %q: %w", value, err))
		} else {
			for _, group := range groups {
				if group = strings.TrimSpace(group); group != "" {
					settings.AllowedGroups = append(settings.AllowedGroups, group)
				}
			}
		}
	}

	if value := strings.TrimSpace(raw[KeyRequestTimeout]); value != "" {
		d, err := duration.Parse(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid requestTimeout %q: %w", value, err))
		} else if timeout := d.ToTimeDuration(); timeout > 0 {
			settings.RequestTimeout = timeout
		}
	}

	return settings, errors.Join(errs...)
}
