// Package assistant lets a language model answer questions about the shop and
// record ledger operations through a fixed set of tools.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxRounds bounds the tool-call loop of one chat
const DefaultMaxRounds = 6

const instructions = `You are the assistant of a cloth shop.
You answer questions about stock, sales and suppliers and record operations on request.
Rules:
1. Use the tools for every number you report. Never guess stock or prices.
2. Quantities and amounts are decimal strings such as "12.5".
3. Only record a sale, supply or adjustment when the user clearly asks for it.
4. When a tool returns an error, explain it plainly and suggest what to change.
5. Keep answers short.`

// ErrUnavailable is returned when no model is configured
var ErrUnavailable = shared.NewDomainError(shared.CodeServiceUnavailable, "Assistant is not configured")

// ToolCall is a function call requested by the model
type ToolCall struct {
	CallID    string
	Name      string
	Arguments json.RawMessage
}

// ToolOutput answers one ToolCall
type ToolOutput struct {
	CallID string
	Output string
}

// Turn is one model response: either final text or tool calls to run
type Turn struct {
	ResponseID string
	Text       string
	Calls      []ToolCall
}

// Interpreter talks to the language model
type Interpreter interface {
	// Begin starts a conversation with the user's message
	Begin(ctx context.Context, instructions, message string, tools []ToolDefinition) (*Turn, error)
	// Continue sends tool outputs back for the previous turn
	Continue(ctx context.Context, previous *Turn, outputs []ToolOutput, tools []ToolDefinition) (*Turn, error)
}

// ToolInvocation records a tool the agent ran during a chat
type ToolInvocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    any             `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorCode string          `json:"error_code,omitempty"`
	Duration  time.Duration   `json:"duration_ns"`
}

// Reply is the outcome of one chat message
type Reply struct {
	Message   string           `json:"message"`
	ToolCalls []ToolInvocation `json:"tool_calls"`
	Rounds    int              `json:"rounds"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Agent runs the tool-call loop
type Agent struct {
	interpreter Interpreter
	registry    *ToolRegistry
	maxRounds   int
	logger      *zap.Logger
}

// NewAgent creates an Agent. A nil interpreter makes every chat fail with ErrUnavailable.
func NewAgent(interpreter Interpreter, registry *ToolRegistry, maxRounds int, logger *zap.Logger) *Agent {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		interpreter: interpreter,
		registry:    registry,
		maxRounds:   maxRounds,
		logger:      logger,
	}
}

// Available reports whether a model is configured
func (a *Agent) Available() bool {
	return a != nil && a.interpreter != nil
}

// Chat answers message on behalf of session, running at most maxRounds rounds of tool calls
func (a *Agent) Chat(ctx context.Context, session Session, message string) (*Reply, error) {
	if !a.Available() {
		return nil, ErrUnavailable
	}
	if message == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Message cannot be empty")
	}

	tools := a.registry.All()
	turn, err := a.interpreter.Begin(ctx, instructions, message, tools)
	if err != nil {
		return nil, fmt.Errorf("assistant request: %w", err)
	}

	reply := &Reply{ToolCalls: []ToolInvocation{}}
	for len(turn.Calls) > 0 {
		if reply.Rounds == a.maxRounds {
			a.logger.Warn("Assistant stopped at round limit",
				zap.String("tenant_id", session.TenantID.String()),
				zap.Int("rounds", reply.Rounds))
			reply.Truncated = true
			reply.Message = turn.Text
			return reply, nil
		}
		reply.Rounds++

		outputs := make([]ToolOutput, 0, len(turn.Calls))
		for _, call := range turn.Calls {
			inv := a.invoke(ctx, session, call)
			reply.ToolCalls = append(reply.ToolCalls, inv)
			outputs = append(outputs, ToolOutput{CallID: call.CallID, Output: encodeOutput(inv)})
		}
		turn, err = a.interpreter.Continue(ctx, turn, outputs, tools)
		if err != nil {
			return nil, fmt.Errorf("assistant request: %w", err)
		}
	}
	reply.Message = turn.Text
	return reply, nil
}

func (a *Agent) invoke(ctx context.Context, session Session, call ToolCall) ToolInvocation {
	inv := ToolInvocation{Name: call.Name, Arguments: call.Arguments}
	start := time.Now()
	result, err := a.registry.Call(ctx, session, call.Name, call.Arguments)
	inv.Duration = time.Since(start)

	fields := []zap.Field{
		zap.String("tenant_id", session.TenantID.String()),
		zap.String("tool", call.Name),
		zap.Duration("duration", inv.Duration),
	}
	if session.RequestID != "" {
		fields = append(fields, zap.String("request_id", session.RequestID))
	}
	if err != nil {
		inv.Error = err.Error()
		var de *shared.DomainError
		if errors.As(err, &de) {
			inv.ErrorCode = de.Code
			inv.Error = de.Message
		}
		a.logger.Info("Assistant tool failed", append(fields, zap.Error(err))...)
		return inv
	}
	inv.Result = result
	if def, ok := a.registry.Get(call.Name); ok && def.Mutates {
		a.logger.Info("Assistant changed the ledger", fields...)
	} else {
		a.logger.Debug("Assistant tool called", fields...)
	}
	return inv
}

func encodeOutput(inv ToolInvocation) string {
	var payload any = inv.Result
	if inv.Error != "" {
		payload = map[string]string{"error": inv.Error, "code": inv.ErrorCode}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(raw)
}
