// Package assistant is the LLM chat layer: a completion client with a small
// tool registry so the model can consult the calendar and reminder services
// while answering.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"

	"jazzy/internal/assistant/tools"
	"jazzy/internal/logger"
	"jazzy/internal/model"
)

// defaultSystemPrompt is the Jazzy persona. Responses feed a voice interface,
// so short and conversational beats thorough.
const defaultSystemPrompt = `You are Jazzy, a friendly and helpful personal assistant. You help with tasks, reminders, calendar management, and general questions.

Keep your responses concise and conversational - you're being used in a voice interface, so shorter responses work better. Be warm and personable.`

const maxToolIterations = 15

// Assistant wraps the completion client, the configured model and the tool
// registry.
type Assistant struct {
	cli      openai.Client
	model    openai.ChatModel
	system   string
	registry *tools.Registry
}

// New creates an Assistant. The API key comes from the client's standard
// environment lookup. An empty systemPrompt falls back to the Jazzy persona;
// a nil registry means no tools.
func New(chatModel, systemPrompt string, registry *tools.Registry) *Assistant {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &Assistant{
		cli:      openai.NewClient(),
		model:    openai.ChatModel(chatModel),
		system:   systemPrompt,
		registry: registry,
	}
}

// Reply generates the assistant's next turn for the given conversation,
// running tool calls until the model produces text or the iteration bound is
// hit.
func (a *Assistant) Reply(ctx context.Context, conversation []model.ChatMessage) (string, error) {
	if len(conversation) == 0 {
		return "", errors.New("conversation has no messages")
	}

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(a.system),
	}
	for _, m := range conversation {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	for i := 0; i < maxToolIterations; i++ {
		resp, err := a.cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    a.model,
			Messages: msgs,
			Tools:    a.registry.Definitions(),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no choices returned by completion API")
		}

		message := resp.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			return message.Content, nil
		}

		msgs = append(msgs, message.ToParam())

		for _, call := range message.ToolCalls {
			result, err := a.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Str("tool", call.Function.Name).Msg("tool call failed")
				result = "Error: " + err.Error()
			}
			msgs = append(msgs, openai.ToolMessage(result, call.ID))
		}
	}

	return "", errors.New("too many tool calls, unable to generate reply")
}

// DraftEmailReply produces a reply body for a triaged email. Only the body
// comes back; greeting through sign-off, no subject line.
func (a *Assistant) DraftEmailReply(ctx context.Context, from, subject, summary, instructions string) (string, error) {
	if subject == "" || summary == "" {
		return "", errors.New("email details are required")
	}

	senderName := firstName(from)

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a professional but friendly email reply.\n\n")
	fmt.Fprintf(&b, "Original email from: %s\n", from)
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Summary of email: %s\n", summary)
	if strings.TrimSpace(instructions) != "" {
		fmt.Fprintf(&b, "\nInstructions for the reply: %s\n", instructions)
	}
	fmt.Fprintf(&b, "\nAddress the sender as %s. Write only the body of the reply, greeting through sign-off. Do not include a subject line.", senderName)

	resp, err := a.cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(b.String()),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("empty response from completion API")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// firstName extracts the sender's first name from a "Name <addr>" field.
func firstName(from string) string {
	name := strings.TrimSpace(strings.Split(from, "<")[0])
	if name == "" {
		return "there"
	}
	return strings.Fields(name)[0]
}
