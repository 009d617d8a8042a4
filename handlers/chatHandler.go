package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/definitelynotchirag/Fitlog/db"
	"github.com/definitelynotchirag/Fitlog/llm"
	"github.com/definitelynotchirag/Fitlog/middleware"
	"github.com/definitelynotchirag/Fitlog/services"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Generator is the process-wide completion client, set from main.
var Generator llm.Generator

// doneSentinel terminates every streamed exchange, exactly once.
const doneSentinel = "[DONE]"

type chatRequest struct {
	Prompt string `json:"prompt"`
	User   uint   `json:"user"`
}

func chatTimeout() time.Duration {
	secs, err := strconv.Atoi(utils.GetEnv("CHAT_TIMEOUT_SECONDS", "90"))
	if err != nil || secs <= 0 {
		secs = 90
	}
	return time.Duration(secs) * time.Second
}

// resolveChatUser prefers the authenticated user; the body's user field is
// accepted only when it names the same account (the web client sends it).
func resolveChatUser(c *gin.Context, req chatRequest) (uint, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return 0, false
	}
	if req.User != 0 && req.User != user.ID {
		return 0, false
	}
	return user.ID, true
}

// ChatStream handles POST /api/chat/stream. The response is a stream of
// newline-delimited JSON event frames closed by the [DONE] sentinel line.
// Transport status is always 200; failures travel as in-band error events.
func ChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	userID, ok := resolveChatUser(c, req)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout())
	defer cancel()

	writer := c.Writer
	done := false
	writeDone := func() {
		if done {
			return
		}
		done = true
		writer.WriteString(doneSentinel + "\n")
		writer.Flush()
	}

	// The sentinel and close are guaranteed even when a handler below
	// panics; the stream must never be left open.
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Error("chat_stream_panic", zap.Any("panic", r))
			writeEvent(writer, services.Event{
				Type:    services.EventError,
				Message: "Sorry, I encountered an error processing your request.",
			})
		}
		writeDone()
	}()

	emit := func(ev services.Event) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		return writeEvent(writer, ev)
	}

	if err := services.ProcessChatStream(ctx, db.DB, Generator, userID, req.Prompt, emit); err != nil {
		// Emit failed: client disconnected mid-stream. Nothing to deliver.
		utils.Logger.Info("chat_stream_client_gone",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}

func writeEvent(w gin.ResponseWriter, ev services.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// Chat handles POST /api/chat, the non-streaming compatibility variant.
// Failures are {success:false, message} with HTTP 200, matching the web
// client's expectations.
func Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	userID, ok := resolveChatUser(c, req)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout())
	defer cancel()

	result, err := services.ProcessChat(ctx, db.DB, Generator, userID, req.Prompt)
	if err != nil {
		utils.ErrorCount.WithLabelValues("chat", "pipeline").Inc()
		utils.Logger.Warn("chat_request_failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "An error occurred while processing the request.",
		})
		return
	}

	resp := gin.H{
		"success": true,
		"message": result.Message,
	}
	if result.CaloriesInfo != nil {
		resp["caloriesInfo"] = result.CaloriesInfo
	}
	c.JSON(http.StatusOK, resp)
}
