package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

// Session identifies who a chat acts for. It is handed to every tool call.
type Session struct {
	TenantID  uuid.UUID
	RequestID string
}

// ToolHandler executes one tool call. args is the raw JSON produced by the model.
type ToolHandler func(ctx context.Context, session Session, args json.RawMessage) (any, error)

// ToolDefinition describes a single tool in the registry
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Mutates     bool // the tool writes to the ledger
	Handler     ToolHandler
}

// ToolRegistry holds the tools offered to the model
type ToolRegistry struct {
	tools map[string]ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]ToolDefinition)}
}

// Register adds a tool, replacing any tool with the same name
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools[t.Name] = t
}

// Get returns the tool with the given name
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns every tool sorted by name
func (r *ToolRegistry) All() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the named tool for session
func (r *ToolRegistry) Call(ctx context.Context, session Session, name string, args json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return t.Handler(ctx, session, args)
}

// noArgsSchema is the input schema of a tool that takes no arguments
func noArgsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

// schemaFor reflects the JSON schema of T's fields into a plain map.
// The reflector cannot expand a struct without fields.
func schemaFor[T any]() map[string]any {
	if t := reflect.TypeFor[T](); t.Kind() == reflect.Struct && t.NumField() == 0 {
		return noArgsSchema()
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	var v T
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("reflect tool schema: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("decode tool schema: %v", err))
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}
