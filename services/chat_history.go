package services

import (
	"strings"

	"github.com/definitelynotchirag/Fitlog/models"
	"gorm.io/gorm"
)

// ChatHistoryWindow caps how many persisted messages feed the LLM context.
// The stored history itself is unbounded.
const ChatHistoryWindow = 100

// GetOrCreateChatHistory upserts the per-user history row.
func GetOrCreateChatHistory(gdb *gorm.DB, userID uint) (models.ChatHistory, error) {
	var history models.ChatHistory
	err := gdb.Where(models.ChatHistory{UserID: userID}).FirstOrCreate(&history).Error
	if err != nil {
		return models.ChatHistory{}, &PersistenceError{Op: "upsert chat history", Err: err}
	}
	return history, nil
}

// AppendChatMessage appends one message to the user's history.
func AppendChatMessage(gdb *gorm.DB, userID uint, author, text string) error {
	history, err := GetOrCreateChatHistory(gdb, userID)
	if err != nil {
		return err
	}

	msg := models.ChatMessage{
		ChatHistoryID: history.ID,
		Author:        author,
		Text:          text,
	}
	if err := gdb.Create(&msg).Error; err != nil {
		return &PersistenceError{Op: "append chat message", Err: err}
	}
	return nil
}

// RecentMessages returns the newest `window` messages in chronological order.
func RecentMessages(gdb *gorm.DB, userID uint, window int) ([]models.ChatMessage, error) {
	history, err := GetOrCreateChatHistory(gdb, userID)
	if err != nil {
		return nil, err
	}

	var msgs []models.ChatMessage
	err = gdb.Where("chat_history_id = ?", history.ID).
		Order("id DESC").
		Limit(window).
		Find(&msgs).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list chat messages", Err: err}
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// RecentTranscript renders the window as plain lines of message text for
// prompt context.
func RecentTranscript(gdb *gorm.DB, userID uint, window int) (string, error) {
	msgs, err := RecentMessages(gdb, userID, window)
	if err != nil {
		return "", err
	}

	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.Text
	}
	return strings.Join(lines, "\n"), nil
}
