package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used when the configuration names none
const DefaultModel = string(shared.ChatModelGPT4o)

// OpenAIInterpreter drives the OpenAI Responses API. Follow-up turns chain on
// the previous response ID, so no transcript is kept here.
type OpenAIInterpreter struct {
	client *openai.Client
	model  string
}

// NewOpenAIInterpreter creates an interpreter, or returns ErrUnavailable without an API key
func NewOpenAIInterpreter(apiKey, model string, opts ...option.RequestOption) (*OpenAIInterpreter, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIInterpreter{client: &client, model: model}, nil
}

// Begin sends the user message with the instructions and tools
func (o *OpenAIInterpreter) Begin(ctx context.Context, instructions, message string, tools []ToolDefinition) (*Turn, error) {
	params := o.params(tools)
	params.Instructions = param.NewOpt(instructions)
	params.Input = responses.ResponseNewParamsInputUnion{OfString: param.NewOpt(message)}
	return o.send(ctx, params)
}

// Continue returns tool outputs for the calls of previous
func (o *OpenAIInterpreter) Continue(ctx context.Context, previous *Turn, outputs []ToolOutput, tools []ToolDefinition) (*Turn, error) {
	items := make(responses.ResponseInputParam, 0, len(outputs))
	for _, out := range outputs {
		items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(out.CallID, out.Output))
	}
	params := o.params(tools)
	params.PreviousResponseID = param.NewOpt(previous.ResponseID)
	params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: items}
	return o.send(ctx, params)
}

func (o *OpenAIInterpreter) params(tools []ToolDefinition) responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Tools: toOpenAITools(tools),
	}
}

func (o *OpenAIInterpreter) send(ctx context.Context, params responses.ResponseNewParams) (*Turn, error) {
	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}
	turn := &Turn{ResponseID: resp.ID, Text: resp.OutputText()}
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		call := item.AsFunctionCall()
		turn.Calls = append(turn.Calls, ToolCall{
			CallID:    call.CallID,
			Name:      call.Name,
			Arguments: json.RawMessage(call.Arguments),
		})
	}
	return turn, nil
}

// toOpenAITools converts registry tools to the Responses API tool format
func toOpenAITools(tools []ToolDefinition) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

var _ Interpreter = (*OpenAIInterpreter)(nil)
