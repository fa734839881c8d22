package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"expert_panel_go/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// messagePolicy strips all markup from message bodies before they are
// persisted and later re-displayed.
var messagePolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup from user-supplied free text
func SanitizeText(content string) string {
	return strings.TrimSpace(messagePolicy.Sanitize(content))
}

// StartOrGetConversation looks up the conversation for the unordered
// (a, b) pair, creating it when absent. Participants are stored
// sorted by ID so one unique index covers both orderings; a lost race
// surfaces as a constraint error and the second lookup recovers it.
func StartOrGetConversation(db *gorm.DB, a, b string) (*models.Conversation, error) {
	if a == b {
		return nil, fmt.Errorf("conversation requires two distinct participants")
	}
	p1, p2 := a, b
	if p2 < p1 {
		p1, p2 = p2, p1
	}

	var conversation models.Conversation
	err := db.Where("participant_1_id = ? AND participant_2_id = ?", p1, p2).
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	conversation = models.Conversation{Participant1ID: p1, Participant2ID: p2}
	if createErr := db.Create(&conversation).Error; createErr != nil {
		// Concurrent creator may have won; re-read before giving up
		if retryErr := db.Where("participant_1_id = ? AND participant_2_id = ?", p1, p2).
			First(&conversation).Error; retryErr == nil {
			return &conversation, nil
		}
		return nil, fmt.Errorf("failed to create conversation: %w", createErr)
	}
	return &conversation, nil
}

// ListConversations returns the principal's conversations, newest
// activity first.
func ListConversations(db *gorm.DB, profileID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := db.Preload("Participant1").Preload("Participant2").
		Where("participant_1_id = ? OR participant_2_id = ?", profileID, profileID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// SendMessage inserts the message, then touches the conversation's
// last_message_at. The touch is best-effort: if it fails the message
// still stands and ordering is briefly stale.
func SendMessage(db *gorm.DB, conversationID, senderID, recipientID, content string) (*models.Message, error) {
	content = SanitizeText(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}

	var conversation models.Conversation
	if err := db.First(&conversation, "id = ?", conversationID).Error; err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if !conversation.HasParticipant(senderID) || !conversation.HasParticipant(recipientID) {
		return nil, fmt.Errorf("sender and recipient must both be conversation participants")
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	}
	if err := db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	now := time.Now()
	if err := db.Model(&conversation).Update("last_message_at", now).Error; err != nil {
		log.Printf("[WARNING] Failed to touch conversation %s: %v", conversationID, err)
	}

	Feed.PublishUnreadCount(db, recipientID)
	return message, nil
}

// MarkRead flags the recipient's unread messages in the conversation
// as read. Idempotent; already-read rows are untouched.
func MarkRead(db *gorm.DB, conversationID, recipientID string) error {
	err := db.Model(&models.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", conversationID, recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	Feed.PublishUnreadCount(db, recipientID)
	return nil
}

// UnreadCount counts unread messages addressed to the principal
// across all conversations.
func UnreadCount(db *gorm.DB, profileID string) (int64, error) {
	var count int64
	err := db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", profileID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
