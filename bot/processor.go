package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/Brawl345/forumbot/plugin"
	"github.com/rs/xid"
)

type Processor struct {
	managerService *managerService
	wg             sync.WaitGroup
}

func NewProcessor(managerService *managerService) *Processor {
	return &Processor{
		managerService: managerService,
	}
}

// Dispatch runs every action handler bound to hook in its own goroutine and returns
// the number of started handlers. Errors and panics are logged with a GUID, they
// never reach the caller.
func (p *Processor) Dispatch(ctx context.Context, hook string, payload json.RawMessage) int {
	// handlers outlive the HTTP request that delivered the event
	ctx = context.WithoutCancel(ctx)

	dispatched := 0
	for _, plg := range p.managerService.Plugins() {
		for _, h := range plg.Handlers() {
			handler, ok := h.(*plugin.ActionHandler)
			if !ok || handler.Hook() != hook {
				continue
			}

			if !p.managerService.IsPluginEnabled(plg.Name()) {
				log.Debug().Msgf("Plugin %s is disabled", plg.Name())
				continue
			}

			dispatched++
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()

				_, err := run(plugin.HookContext{
					Context: ctx,
					Hook:    hook,
					Payload: payload,
				}, handler)
				if err != nil {
					guid := xid.New().String()
					log.Err(err).
						Str("guid", guid).
						Str("hook", hook).
						Str("component", plg.Name()).
						Send()
				}
			}()
		}
	}

	return dispatched
}

// Filter passes payload through every filter handler bound to hook, in plugin order.
// Without handlers the payload is returned unchanged.
func (p *Processor) Filter(ctx context.Context, hook string, payload json.RawMessage) (any, error) {
	var result any = payload

	for _, plg := range p.managerService.Plugins() {
		for _, h := range plg.Handlers() {
			handler, ok := h.(*plugin.FilterHandler)
			if !ok || handler.Hook() != hook || !p.managerService.IsPluginEnabled(plg.Name()) {
				continue
			}

			out, err := run(plugin.HookContext{
				Context: ctx,
				Hook:    hook,
				Payload: payload,
			}, handler)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", plg.Name(), err)
			}

			encoded, err := json.Marshal(out)
			if err != nil {
				return nil, err
			}
			payload = encoded
			result = out
		}
	}

	return result, nil
}

// Request runs the request handler bound to hook and returns its result.
func (p *Processor) Request(ctx context.Context, hook string, payload json.RawMessage) (any, error) {
	for _, plg := range p.managerService.Plugins() {
		for _, h := range plg.Handlers() {
			handler, ok := h.(*plugin.RequestHandler)
			if !ok || handler.Hook() != hook {
				continue
			}

			if !p.managerService.IsPluginEnabled(plg.Name()) {
				return nil, fmt.Errorf("%w: plugin %s is disabled", plugin.ErrUnknown, plg.Name())
			}

			return run(plugin.HookContext{
				Context: ctx,
				Hook:    hook,
				Payload: payload,
			}, handler)
		}
	}

	return nil, fmt.Errorf("%w: %s", plugin.ErrUnknown, hook)
}

// Hooks lists all hook names with a registered handler.
func (p *Processor) Hooks() []string {
	var hooks []string
	seen := make(map[string]bool)
	for _, plg := range p.managerService.Plugins() {
		for _, h := range plg.Handlers() {
			if !seen[h.Hook()] {
				seen[h.Hook()] = true
				hooks = append(hooks, h.Hook())
			}
		}
	}
	return hooks
}

// Wait blocks until all dispatched action handlers returned.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func run(c plugin.HookContext, handler plugin.Handler) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Msgf("%s", debug.Stack())
			err = fmt.Errorf("panic in %s: %v", c.Hook, r)
		}
	}()

	return handler.Run(c)
}
