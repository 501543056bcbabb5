// Package registry models the host side of the menu: plugin descriptors and
// handler metadata with their trigger filters. The menu collector only ever
// reads this surface through the Source interface.
package registry

import (
	"fmt"
	"sync"
)

// HandlerID is a stable handle assigned at registration time. Grouped-handler
// bookkeeping compares these instead of object identity, so two handlers with
// the same command name never collide.
type HandlerID int

// NoHandler marks a command filter with no registered backing handler.
const NoHandler HandlerID = 0

// FilterKind tags the closed filter variant.
type FilterKind int

const (
	FilterCommand FilterKind = iota
	FilterGroup
	FilterPermission
)

// PermissionKind is the permission a handler demands. Only admin affects the
// rendered menu; anything else is ignored there.
type PermissionKind int

const (
	PermissionAdmin PermissionKind = iota
	PermissionOther
)

// Filter is a closed tagged union: exactly one of the payload fields is set,
// matching Kind.
type Filter struct {
	Kind       FilterKind
	Command    *CommandFilter
	Group      *GroupFilter
	Permission *PermissionFilter
}

// CommandFilter matches a literal command name plus optional aliases.
// Inside a group, Handler links the leaf back to its registered handler.
type CommandFilter struct {
	Name    string
	Aliases []string
	Handler HandlerID
}

// GroupFilter namespaces sub-filters under a shared name prefix. Subs may
// contain further groups to unbounded depth.
type GroupFilter struct {
	Name string
	Subs []Filter
}

// PermissionFilter is a trigger-time authorization requirement.
type PermissionFilter struct {
	Kind PermissionKind
}

// Command builds a top-level command filter.
func Command(name string, aliases ...string) Filter {
	return Filter{Kind: FilterCommand, Command: &CommandFilter{Name: name, Aliases: aliases}}
}

// SubCommand builds a command filter that references the handler registered
// for the leaf, so extraction can suppress that handler's standalone entry.
func SubCommand(h HandlerID, name string, aliases ...string) Filter {
	return Filter{Kind: FilterCommand, Command: &CommandFilter{Name: name, Aliases: aliases, Handler: h}}
}

// Group builds a command-group filter.
func Group(name string, subs ...Filter) Filter {
	return Filter{Kind: FilterGroup, Group: &GroupFilter{Name: name, Subs: subs}}
}

// AdminOnly builds an admin permission filter.
func AdminOnly() Filter {
	return Filter{Kind: FilterPermission, Permission: &PermissionFilter{Kind: PermissionAdmin}}
}

// Permission builds a permission filter of the given kind.
func Permission(kind PermissionKind) Filter {
	return Filter{Kind: FilterPermission, Permission: &PermissionFilter{Kind: kind}}
}

// Plugin describes one loaded feature module.
type Plugin struct {
	Name        string
	DisplayName string
	Description string
	ModulePath  string // join key to handlers
	RootDir     string // icon lookup directory under the plugins dir
	Activated   bool
	Reserved    bool // built-in, hidden unless opted in
}

// Handler is one registered callback with its trigger filters.
type Handler struct {
	ID          HandlerID
	ModulePath  string
	Description string
	Filters     []Filter
}

// Source is the read-only view the menu collector consumes.
type Source interface {
	Plugins() ([]Plugin, error)
	Handlers() []Handler
}

// Registry is the in-memory implementation of Source.
type Registry struct {
	mu       sync.RWMutex
	plugins  []Plugin
	handlers []Handler
	nextID   HandlerID
}

func New() *Registry {
	return &Registry{nextID: 1}
}

// AddPlugin registers a plugin descriptor.
func (r *Registry) AddPlugin(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)
}

// AddHandler registers handler metadata and returns its stable ID.
func (r *Registry) AddHandler(modulePath, description string, filters ...Filter) HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.handlers = append(r.handlers, Handler{
		ID:          id,
		ModulePath:  modulePath,
		Description: description,
		Filters:     filters,
	})
	return id
}

// Plugins returns a snapshot of the registered plugin descriptors.
func (r *Registry) Plugins() ([]Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out, nil
}

// Handlers returns a snapshot of the registered handler metadata.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// String helps debug logs name a filter without dumping the whole tree.
func (f Filter) String() string {
	switch f.Kind {
	case FilterCommand:
		return fmt.Sprintf("command(%s)", f.Command.Name)
	case FilterGroup:
		return fmt.Sprintf("group(%s)", f.Group.Name)
	case FilterPermission:
		return fmt.Sprintf("permission(%d)", f.Permission.Kind)
	}
	return "unknown"
}
