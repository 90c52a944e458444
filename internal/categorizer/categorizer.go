package categorizer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"shoplist/internal/llm"
	"shoplist/internal/shared"
	"shoplist/internal/shopping"
)

//go:embed categorizer_prompt.md
var categorizerPrompt string

var promptTemplate = template.Must(template.New("categorizer").Parse(categorizerPrompt))

// operationName identifies suggestion calls in the usage metrics.
const operationName = "Categorizer"

// ErrNoSuggestion is returned when the model's answer matches no category.
var ErrNoSuggestion = errors.New("no matching category suggested")

// MetricsRecorder persists usage of model calls.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.CallMeta) error
}

// Categorizer suggests a category for a product.
type Categorizer struct {
	textGen llm.TextGenerator
	metrics MetricsRecorder
}

// New creates a Categorizer. metrics may be nil.
func New(textGen llm.TextGenerator, metrics MetricsRecorder) *Categorizer {
	return &Categorizer{textGen: textGen, metrics: metrics}
}

// Suggest asks the text generator which of categories fits product and
// resolves the answer through Match.
func (c *Categorizer) Suggest(ctx context.Context, product string, categories []shopping.Category) (shopping.Category, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return shopping.Category{}, fmt.Errorf("product name is required")
	}
	if len(categories) == 0 {
		return shopping.Category{}, ErrNoSuggestion
	}

	prompt, err := buildPrompt(product, categories)
	if err != nil {
		return shopping.Category{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return shopping.Category{}, fmt.Errorf("failed to get LLM response: %w", err)
	}
	c.record(ctx, shared.CallMeta{
		Operation: operationName,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	})

	var answer struct {
		CategoryID string `json:"categoryId"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &answer); err != nil {
		return shopping.Category{}, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}

	cat, ok := Match(answer.CategoryID, categories)
	if !ok {
		return shopping.Category{}, fmt.Errorf("%w for %q: model answered %q", ErrNoSuggestion, product, answer.CategoryID)
	}
	return cat, nil
}

func (c *Categorizer) record(ctx context.Context, meta shared.CallMeta) {
	if c.metrics == nil {
		return
	}
	if err := c.metrics.RecordMeta(ctx, meta); err != nil {
		log.Printf("Failed to record categorizer metrics: %v", err)
	}
}

func buildPrompt(product string, categories []shopping.Category) (string, error) {
	data := struct {
		Product    string
		Categories []shopping.Category
	}{product, categories}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
