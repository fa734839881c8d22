package handlers

import (
	"net/http"

	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// GetConversations lists the principal's conversations, newest
// activity first.
func GetConversations(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	conversations, err := services.ListConversations(db.DB, currentProfile.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch conversations",
		})
	}

	return c.JSON(http.StatusOK, conversations)
}

// StartConversationRequest is the body for POST /api/conversations
type StartConversationRequest struct {
	ParticipantID string `json:"participant_id"`
}

// StartConversation returns the existing conversation with the other
// participant or creates one. Experts may only message the internal
// team and vice versa.
func StartConversation(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	req := new(StartConversationRequest)
	if err := c.Bind(req); err != nil || req.ParticipantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "participant_id is required",
		})
	}

	var other models.Profile
	if err := db.DB.First(&other, "id = ?", req.ParticipantID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Participant not found",
		})
	}

	// Messaging runs between an expert and the internal team
	if currentProfile.IsExpert() == other.IsExpert() {
		return echo.NewHTTPError(http.StatusForbidden, "Conversations connect experts with staff")
	}

	conversation, err := services.StartOrGetConversation(db.DB, currentProfile.ID, other.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to start conversation",
		})
	}

	return c.JSON(http.StatusOK, conversation)
}

// GetMessages returns a conversation's messages, oldest first
func GetMessages(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	var conversation models.Conversation
	if err := db.DB.First(&conversation, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Conversation not found",
		})
	}
	if !conversation.HasParticipant(currentProfile.ID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var messages []models.Message
	if err := db.DB.Where("conversation_id = ?", id).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch messages",
		})
	}

	return c.JSON(http.StatusOK, messages)
}

// SendMessageRequest is the body for POST /api/conversations/:id/messages
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage inserts a message. Failure surfaces to the sender so
// the composer can retry.
func SendMessage(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	req := new(SendMessageRequest)
	if err := c.Bind(req); err != nil || req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Message content is required",
		})
	}

	var conversation models.Conversation
	if err := db.DB.First(&conversation, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Conversation not found",
		})
	}
	if !conversation.HasParticipant(currentProfile.ID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	recipientID := conversation.OtherParticipantID(currentProfile.ID)
	message, err := services.SendMessage(db.DB, id, currentProfile.ID, recipientID, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to send message",
		})
	}

	return c.JSON(http.StatusCreated, message)
}

// MarkConversationRead flags the principal's unread messages in the
// conversation as read. Idempotent.
func MarkConversationRead(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	var conversation models.Conversation
	if err := db.DB.First(&conversation, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Conversation not found",
		})
	}
	if !conversation.HasParticipant(currentProfile.ID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	if err := services.MarkRead(db.DB, id, currentProfile.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to mark messages read",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// GetUnreadCount returns the principal's unread message count across
// all conversations.
func GetUnreadCount(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	count, err := services.UnreadCount(db.DB, currentProfile.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to count unread messages",
		})
	}

	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}
