package bot

import (
	"errors"
	"strings"
	"sync"

	"github.com/Brawl345/forumbot/plugin"
	"golang.org/x/exp/slices"
)

var (
	ErrPluginNotFound = errors.New("plugin does not exist")
	ErrAlreadyEnabled = errors.New("plugin is already enabled")
	ErrAlreadyOff     = errors.New("plugin is already disabled")
)

// managerService keeps the registered plugins and which of them are switched off.
// The state is runtime only, DISABLED_PLUGINS seeds it on start.
type managerService struct {
	mu              sync.RWMutex
	plugins         []plugin.Plugin
	disabledPlugins []string
}

func NewManagerService(disabled string) *managerService {
	var disabledPlugins []string
	for _, name := range strings.Split(disabled, ",") {
		if name = strings.TrimSpace(name); name != "" {
			disabledPlugins = append(disabledPlugins, name)
		}
	}

	return &managerService{
		disabledPlugins: disabledPlugins,
	}
}

func (service *managerService) SetPlugins(plugins []plugin.Plugin) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.plugins = plugins
}

func (service *managerService) Plugins() []plugin.Plugin {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.plugins
}

func (service *managerService) IsPluginEnabled(name string) bool {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return !slices.Contains(service.disabledPlugins, name)
}

func (service *managerService) exists(name string) bool {
	for _, plg := range service.plugins {
		if plg.Name() == name {
			return true
		}
	}
	return false
}

func (service *managerService) EnablePlugin(name string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if !service.exists(name) {
		return ErrPluginNotFound
	}

	idx := slices.Index(service.disabledPlugins, name)
	if idx == -1 {
		return ErrAlreadyEnabled
	}

	service.disabledPlugins = slices.Delete(service.disabledPlugins, idx, idx+1)
	return nil
}

func (service *managerService) DisablePlugin(name string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if !service.exists(name) {
		return ErrPluginNotFound
	}

	if slices.Contains(service.disabledPlugins, name) {
		return ErrAlreadyOff
	}

	service.disabledPlugins = append(service.disabledPlugins, name)
	return nil
}
