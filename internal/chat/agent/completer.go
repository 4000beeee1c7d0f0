// Package agent runs chat completions through ADK llm agents.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/google/uuid"
)

const appName = "crm_chat"

// Completer sends one prompt per fresh session. Runners are built lazily,
// one per distinct instruction.
type Completer struct {
	llm      model.LLM
	sessions session.Service

	mu      sync.Mutex
	runners map[string]*runner.Runner
}

func NewCompleter(llm model.LLM) *Completer {
	return &Completer{
		llm:      llm,
		sessions: session.InMemoryService(),
		runners:  map[string]*runner.Runner{},
	}
}

func (c *Completer) runnerFor(instruction string) (*runner.Runner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.runners[instruction]; ok {
		return r, nil
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "CRMAssistant",
		Model:       c.llm,
		Description: "Answers questions about the CRM using the supplied statistics.",
		Instruction: instruction,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat agent: %w", err)
	}
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: c.sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat runner: %w", err)
	}
	c.runners[instruction] = r
	return r, nil
}

// Complete runs the agent once and returns the concatenated text output.
func (c *Completer) Complete(ctx context.Context, sessionKey, instruction, prompt string) (string, error) {
	r, err := c.runnerFor(instruction)
	if err != nil {
		return "", err
	}

	userID := "user-" + sessionKey
	sessionID := uuid.New().String()
	_, err = c.sessions.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("create chat session: %w", err)
	}
	defer func() {
		_ = c.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   appName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	msg := &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}

	var out strings.Builder
	for event, err := range r.Run(ctx, userID, sessionID, msg, agent.RunConfig{StreamingMode: agent.StreamingModeNone}) {
		if err != nil {
			return "", err
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			out.WriteString(part.Text)
		}
	}
	return out.String(), nil
}
