// Package structured extracts typed JSON values from chat model output,
// retrying with a stricter prompt when the first reply does not parse.
package structured

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// strictJSONInstruction is appended to the system prompt on retry attempts.
const strictJSONInstruction = `请仅返回可被 JSON 解析器直接解析的 JSON 对象，并严格满足字段结构要求：
1) 不要输出 Markdown 代码块（如 ` + "```json" + `）。
2) 不要输出任何解释文字、前后缀、注释。
3) 所有字符串内引号必须正确转义。`

// maxErrorDetailLen caps the failure detail echoed back to the model.
const maxErrorDetailLen = 200

// Invoker calls a chat model and unmarshals its reply into a caller value.
type Invoker struct {
	chat        domain.ChatModel
	maxAttempts int
	logger      *zap.Logger
}

// New creates an invoker. maxAttempts below 1 is treated as 1.
func New(chat domain.ChatModel, maxAttempts int, logger *zap.Logger) *Invoker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Invoker{chat: chat, maxAttempts: maxAttempts, logger: logger}
}

// Invoke runs the model and unmarshals its output into out. On a parse
// failure it retries with the strict-JSON instruction and the previous
// failure reason appended to the system prompt. The model call error is
// never retried; only unparseable output is.
func (i *Invoker) Invoke(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		system := systemPrompt
		if attempt > 1 {
			system = retrySystemPrompt(systemPrompt, lastErr)
		}

		reply, err := i.chat.Complete(ctx, system, userPrompt)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrStructuredOutputFailed, err)
		}

		if err := json.Unmarshal([]byte(stripCodeFence(reply)), out); err != nil {
			lastErr = err
			i.logger.Warn("structured output parse failed",
				zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrStructuredOutputFailed, lastErr)
}

func retrySystemPrompt(systemPrompt string, lastErr error) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	b.WriteString(strictJSONInstruction)
	b.WriteString("\n上次输出解析失败，请仅返回合法 JSON。")
	if lastErr != nil {
		b.WriteString("\n上次失败原因：")
		b.WriteString(sanitizeErrorDetail(lastErr.Error()))
	}
	return b.String()
}

func sanitizeErrorDetail(msg string) string {
	oneLine := strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(msg))
	if len(oneLine) > maxErrorDetailLen {
		return oneLine[:maxErrorDetailLen] + "..."
	}
	return oneLine
}

// stripCodeFence unwraps a reply the model wrapped in a Markdown code
// block despite instructions. Anything else is returned unchanged.
func stripCodeFence(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
