package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"cofounder/models"
)

func TestBuildSystemPromptWithoutProfile(t *testing.T) {
	assert.Equal(t, SystemPrompt, BuildSystemPrompt(nil))
	assert.Equal(t, SystemPrompt, BuildSystemPrompt(&models.Profile{UserID: "u"}))
}

func TestBuildSystemPromptListsPresentFields(t *testing.T) {
	got := BuildSystemPrompt(&models.Profile{
		CompanyName:  "Acme",
		StartupStage: "mvp",
		Goals:        "reach 100 users",
	})
	assert.True(t, strings.HasPrefix(got, SystemPrompt))
	assert.Equal(t, SystemPrompt+"\n\nFounder Context:\n- Company: Acme\n- Stage: mvp\n- Goals: reach 100 users", got)
	assert.NotContains(t, got, "- Name:")
	assert.NotContains(t, got, "- Industry:")
}
