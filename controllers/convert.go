package controllers

import (
	"cofounder/models"
	"cofounder/pkg/api"
)

func toAPIConversation(m *models.Conversation) api.Conversation {
	return api.Conversation{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toAPIMessage(m *models.Message) api.Message {
	return api.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		Role:           m.Role,
		Content:        m.Content,
		Images:         []string(m.Images),
		CreatedAt:      m.CreatedAt,
	}
}

func toAPIProfile(m *models.Profile) api.Profile {
	return api.Profile{
		DisplayName:  m.DisplayName,
		CompanyName:  m.CompanyName,
		StartupStage: m.StartupStage,
		Industry:     m.Industry,
		Goals:        m.Goals,
		Bio:          m.Bio,
	}
}

func toAPIUser(m *models.User) api.User {
	return api.User{ID: m.ID, Email: m.Email, CreatedAt: m.CreatedAt}
}
