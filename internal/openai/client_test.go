package openai

import (
	"context"
	"testing"
	"time"

	"mailagent/internal/config"
	"mailagent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NoProviderConfigured(t *testing.T) {
	cfg := &config.Config{}
	client, err := NewClient(cfg)
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNewClient_OpenAIOnly(t *testing.T) {
	cfg := &config.Config{OpenAIKey: "sk-test"}
	client, err := NewClient(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "OpenAI", client.GetProviderName())
}

func TestNewClient_AzurePrimary(t *testing.T) {
	cfg := &config.Config{
		AzureOpenAIKey:                 "azure-key",
		AzureOpenAIEndpoint:            "https://example.openai.azure.com",
		AzureOpenAIGPTDeployment:       "gpt-4o-mini",
		AzureOpenAIEmbeddingDeployment: "text-embedding-3-small",
		OpenAIKey:                      "sk-test",
	}
	client, err := NewClient(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "Azure OpenAI", client.GetProviderName())
}

func TestBoundedContext_AppliesConfiguredTimeout(t *testing.T) {
	cfg := &config.Config{OpenAIKey: "sk-test", OpenAITimeout: 30}
	client, err := NewClient(cfg)
	require.NoError(t, err)

	ctx, cancel := client.boundedContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 2*time.Second)
}

func TestBoundedContext_ZeroTimeoutLeavesContextUnbounded(t *testing.T) {
	cfg := &config.Config{OpenAIKey: "sk-test"}
	client, err := NewClient(cfg)
	require.NoError(t, err)

	ctx, cancel := client.boundedContext(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.EmailCategory
	}{
		{"plain question", "question", models.CategoryQuestion},
		{"plain refund", "refund", models.CategoryRefund},
		{"plain other", "other", models.CategoryOther},
		{"uppercase", "QUESTION", models.CategoryQuestion},
		{"wrapped in prose", "The category is: refund.", models.CategoryRefund},
		{"trailing whitespace", "  question \n", models.CategoryQuestion},
		{"unrecognized defaults to other", "complaint", models.CategoryOther},
		{"empty defaults to other", "", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCategory(tt.input))
		})
	}
}

func TestParseImportance(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.ImportanceLevel
	}{
		{"high", "HIGH", models.ImportanceHigh},
		{"medium", "MEDIUM", models.ImportanceMedium},
		{"low", "LOW", models.ImportanceLow},
		{"lowercase high", "high", models.ImportanceHigh},
		{"wrapped in prose", "Importance: MEDIUM", models.ImportanceMedium},
		{"unrecognized defaults to low", "urgent-ish", models.ImportanceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseImportance(tt.input))
		})
	}
}
