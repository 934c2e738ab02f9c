package messaging

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

// ReplyDrafter produces a draft reply to a customer thread. Behind an
// interface so the feature can be disabled or faked in tests.
type ReplyDrafter interface {
	Draft(ctx context.Context, thread []types.Message, tone string) (string, error)
}

var _ ReplyDrafter = (*GenAIDrafter)(nil)

type GenAIDrafter struct {
	client *genai.Client
	model  string
}

func NewGenAIDrafter(ctx context.Context, model string) (*GenAIDrafter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIDrafter{client: client, model: model}, nil
}

func (d *GenAIDrafter) Draft(ctx context.Context, thread []types.Message, tone string) (string, error) {
	if tone == "" {
		tone = "friendly"
	}

	var sb strings.Builder
	sb.WriteString("You write replies for an auto-detailing business. ")
	sb.WriteString(fmt.Sprintf("Draft a %s reply to the customer's latest message. ", tone))
	sb.WriteString("Reply with the message body only.\n\nThread (oldest first):\n")
	for _, m := range thread {
		who := "Customer"
		if m.Direction == types.MessageOutbound {
			who = "Business"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", who, m.Body))
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, genai.Text(sb.String()), nil)
	if err != nil {
		return "", fmt.Errorf("generate reply draft: %w", err)
	}
	draft := strings.TrimSpace(resp.Text())
	if draft == "" {
		return "", fmt.Errorf("model returned an empty draft")
	}
	return draft, nil
}
