package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry collects slash commands and callback handlers before routes are built.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

func slash(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

// RegisterCommand adds cmd under name ("/start" or "start").
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	key := slash(name)
	if key == "" || cmd.Handler == nil || strings.TrimSpace(cmd.Description) == "" {
		return fmt.Errorf("telegram: invalid command %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[key]; dup {
		return fmt.Errorf("telegram: command %s already registered", key)
	}
	r.commands[key] = cmd
	for _, a := range cmd.Aliases {
		if a = slash(a); a != "" {
			r.aliases[a] = key
		}
	}
	logger.Debug(context.Background(), "tg.wire", "register.command",
		slog.String("name", key),
		slog.Bool("admin_only", cmd.AdminOnly),
	)
	return nil
}

// Commands returns a copy of the registered commands keyed by "/name".
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// ListCommands returns the menu entries sorted by name. With visibleOnly,
// hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves name or one of its aliases to the canonical key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	key := slash(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canon, ok := r.aliases[key]; ok {
		key = canon
	}
	cmd, ok := r.commands[key]
	if !ok {
		return "", commands.Command{}, false
	}
	return key, cmd, true
}

// RegisterCallback binds handler to a callback key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if strings.TrimSpace(key) == "" || handler == nil {
		return fmt.Errorf("telegram: invalid callback %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		return fmt.Errorf("telegram: callback %s already registered", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler bound to key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok && h != nil
}

// ListCallbacks returns the registered callback keys, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PublishCommands pushes the visible commands to the Telegram command menu.
func PublishCommands(api interface{ SetCommands(opts ...interface{}) error }, reg *Registry) {
	if err := api.SetCommands(reg.ListCommands(true)); err != nil {
		logger.Error(context.Background(), "tg.wire", "commands.publish",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}
