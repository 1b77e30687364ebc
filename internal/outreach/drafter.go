package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FranksOps/leadscout/internal/llm"
)

const draftPrompt = `You are a professional business communication assistant. Write a concise and compelling cold outreach email to a potential contact in the '%s' space.
The email should be based on the following project summary: "%s"
Keep the email under 150 words and end with a clear call to action. Return ONLY the raw text of the email body.`

// Drafter writes cold outreach emails.
type Drafter struct {
	llm    llm.Completer
	model  string
	logger *slog.Logger
}

// NewDrafter wraps c. An empty model selects llm.DefaultFastModel.
func NewDrafter(c llm.Completer, model string, logger *slog.Logger) *Drafter {
	if model == "" {
		model = llm.DefaultFastModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Drafter{llm: c, model: model, logger: logger}
}

// Draft returns an email body for topic and summary. When the model is unavailable
// or answers with nothing, a fixed template is returned instead, so Draft never fails.
func (d *Drafter) Draft(ctx context.Context, topic, summary string) string {
	body, err := d.llm.Complete(ctx, llm.Request{
		Purpose: "draft",
		Model:   d.model,
		Prompt:  fmt.Sprintf(draftPrompt, topic, summary),
	})
	body = strings.TrimSpace(body)
	if err != nil || body == "" {
		d.logger.Warn("drafting with template", "topic", topic, "err", err)
		return Template(topic, summary)
	}
	d.logger.Info("drafted email", "topic", topic, "chars", len(body))
	return body
}

// Template is the fallback email body.
func Template(topic, summary string) string {
	return fmt.Sprintf("Hello,\n\nI'm reaching out regarding our work in %s. %s\n\nWould you be available for a brief call to discuss potential collaboration?\n\nBest regards,\n[Your Name]", topic, summary)
}
