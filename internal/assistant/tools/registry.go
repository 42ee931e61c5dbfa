package tools

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go/v2"

	"jazzy/internal/logger"
)

// Registry manages the available tools.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Definitions returns all tool definitions for the completion request.
func (r *Registry) Definitions() []openai.ChatCompletionToolUnionParam {
	defs := make([]openai.ChatCompletionToolUnionParam, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	return defs
}

// Execute runs a tool call by name and arguments.
func (r *Registry) Execute(ctx context.Context, toolName, arguments string) (string, error) {
	tool, exists := r.tools[toolName]
	if !exists {
		return "", ErrToolNotFound
	}

	logger.C(ctx).Info().Str("tool", toolName).Str("args", arguments).Msg("executing tool")
	return tool.Execute(ctx, json.RawMessage(arguments))
}
