// Package openai provides a unified client for OpenAI API access
// with support for both Azure OpenAI (primary) and OpenAI platform (fallback)
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailagent/internal/config"
	"mailagent/internal/models"

	"github.com/sashabaranov/go-openai"
)

// InsufficientInfoMarker is the distinguished output the answer model
// emits when the supplied context cannot support an answer.
const InsufficientInfoMarker = "INSUFFICIENT_INFO"

// Client wraps OpenAI client with Azure OpenAI support and fallback capability
type Client struct {
	primary      *openai.Client
	fallback     *openai.Client
	cfg          *config.Config
	useAzure     bool
	gptModel     string
	embedModel   openai.EmbeddingModel
	providerName string
	timeout      time.Duration
}

// NewClient creates a new OpenAI client with Azure as primary and OpenAI as fallback
func NewClient(cfg *config.Config) (*Client, error) {
	client := &Client{
		cfg:     cfg,
		timeout: time.Duration(cfg.OpenAITimeout) * time.Second,
	}

	// Try Azure OpenAI first (primary)
	if cfg.UseAzureOpenAI() {
		azureConfig := openai.DefaultAzureConfig(cfg.AzureOpenAIKey, cfg.AzureOpenAIEndpoint)
		client.primary = openai.NewClientWithConfig(azureConfig)
		client.useAzure = true
		client.gptModel = cfg.AzureOpenAIGPTDeployment
		client.embedModel = openai.EmbeddingModel(cfg.AzureOpenAIEmbeddingDeployment)
		client.providerName = "Azure OpenAI"
	}

	// Setup OpenAI as fallback (or primary if Azure not configured)
	if cfg.HasOpenAIFallback() {
		client.fallback = openai.NewClient(cfg.OpenAIKey)

		if !client.useAzure {
			// Use OpenAI as primary since Azure is not configured
			client.primary = client.fallback
			client.fallback = nil
			client.gptModel = string(openai.GPT4oMini)
			client.embedModel = openai.SmallEmbedding3
			client.providerName = "OpenAI"
		}
	}

	if client.primary == nil {
		return nil, fmt.Errorf("no OpenAI provider configured: set AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY or OPENAI_API_KEY")
	}

	return client, nil
}

// GetProviderName returns the current primary provider name
func (c *Client) GetProviderName() string {
	return c.providerName
}

// Categorize classifies an email into question, refund or other.
func (c *Client) Categorize(ctx context.Context, subject, body string) (models.EmailCategory, error) {
	prompt := fmt.Sprintf(`Analyze this email and categorize it into one of these categories:
1. "question" - if it's asking for help, information, or support
2. "refund" - if it's requesting a refund or return
3. "other" - if it's anything else (spam, nonsense, complaints not asking for refund)

Email Subject: %s
Email Body: %s

Respond with only one word: question, refund, or other`, subject, body)

	resp, err := c.complete(ctx, prompt, 10, 0)
	if err != nil {
		return "", err
	}

	return parseCategory(resp), nil
}

// ExtractOrderID asks the model for an order id mentioned in the email
// body. Returns "" when the model reports none.
func (c *Client) ExtractOrderID(ctx context.Context, body string) (string, error) {
	prompt := fmt.Sprintf(`Extract the order ID from this email. Order IDs are typically alphanumeric codes like:
- ORDER123, ORD-456, #789, etc.

Email: %s

If you find an order ID, respond with just the order ID.
If no order ID is found, respond with "NONE"`, body)

	resp, err := c.complete(ctx, prompt, 20, 0)
	if err != nil {
		return "", err
	}

	orderID := strings.TrimSpace(resp)
	if orderID == "" || strings.EqualFold(orderID, "NONE") {
		return "", nil
	}
	return orderID, nil
}

// RateImportance ranks an email body low, medium or high.
func (c *Client) RateImportance(ctx context.Context, body string) (models.ImportanceLevel, error) {
	prompt := fmt.Sprintf(`Analyze this email and determine its importance level:
- HIGH: Urgent complaints, legal issues, escalations, angry customers
- MEDIUM: General inquiries, feedback, non-urgent issues
- LOW: Spam, nonsense, promotional emails, obvious junk

Email: %s

Respond with only: HIGH, MEDIUM, or LOW`, body)

	resp, err := c.complete(ctx, prompt, 10, 0)
	if err != nil {
		return "", err
	}

	return parseImportance(resp), nil
}

// GenerateReply produces a customer service reply for an inquiry,
// optionally steered by an instruction.
func (c *Client) GenerateReply(ctx context.Context, emailBody, instruction string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Generate a professional customer service email response for this customer inquiry:\n\n")
	prompt.WriteString(emailBody)
	prompt.WriteString("\n\n")
	if instruction != "" {
		prompt.WriteString("Additional context: ")
		prompt.WriteString(instruction)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("Keep the response concise, helpful, and professional.")

	resp, err := c.complete(ctx, prompt.String(), 500, 0.7)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// AnswerWithContext answers a customer question from retrieved
// knowledge chunks. The second return value is false when the model
// judged the context insufficient.
func (c *Client) AnswerWithContext(ctx context.Context, question string, chunks []string) (string, bool, error) {
	prompt := fmt.Sprintf(`Based on the following knowledge base information, answer the customer's question.
If the information provided doesn't contain enough details to answer the question accurately, respond with "%s".

Knowledge Base:
%s

Customer Question: %s

Provide a helpful and accurate answer based only on the knowledge base information.`,
		InsufficientInfoMarker, strings.Join(chunks, "\n\n"), question)

	resp, err := c.complete(ctx, prompt, 500, 0.7)
	if err != nil {
		return "", false, err
	}

	answer := strings.TrimSpace(resp)
	if strings.Contains(answer, InsufficientInfoMarker) {
		return "", false, nil
	}
	return answer, true, nil
}

// CreateEmbeddings generates embeddings for the given texts
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	resp, err := c.primary.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.embedModel,
	})

	if err != nil && c.fallback != nil {
		// Try fallback provider
		resp, err = c.fallback.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.SmallEmbedding3,
		})
		if err != nil {
			return nil, fmt.Errorf("both providers failed: %v", err)
		}
	} else if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}

// complete runs a single-turn chat completion against the primary
// provider, falling back to the OpenAI platform when configured.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}

	req := openai.ChatCompletionRequest{
		Model:       c.gptModel,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.primary.CreateChatCompletion(ctx, req)
	if err != nil && c.fallback != nil {
		req.Model = string(openai.GPT4oMini)
		resp, err = c.fallback.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("both providers failed: %v", err)
		}
	} else if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.providerName)
	}

	return resp.Choices[0].Message.Content, nil
}

// boundedContext puts a deadline on an outbound API call when a
// timeout is configured.
func (c *Client) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// parseCategory maps free-form model output onto the closed category
// enum; anything unrecognized is other.
func parseCategory(s string) models.EmailCategory {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(normalized, "question"):
		return models.CategoryQuestion
	case strings.Contains(normalized, "refund"):
		return models.CategoryRefund
	default:
		return models.CategoryOther
	}
}

// parseImportance maps free-form model output onto the importance
// enum; anything unrecognized is low.
func parseImportance(s string) models.ImportanceLevel {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(normalized, "HIGH"):
		return models.ImportanceHigh
	case strings.Contains(normalized, "MEDIUM"):
		return models.ImportanceMedium
	default:
		return models.ImportanceLow
	}
}
