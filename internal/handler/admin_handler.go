package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tg-claude-relay/internal/config"
	"tg-claude-relay/internal/service"
)

// AdminHandler 处理管理 API 中与对话相关的请求。
type AdminHandler struct {
	conversations service.ConversationService
	startedAt     time.Time
}

// NewAdminHandler 创建一个新的 AdminHandler。
func NewAdminHandler(conversations service.ConversationService) *AdminHandler {
	return &AdminHandler{
		conversations: conversations,
		startedAt:     time.Now(),
	}
}

// ListConversations 返回所有活跃会话的概览。
func (h *AdminHandler) ListConversations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    h.conversations.ListConversations(),
	})
}

// GetConversation 返回指定用户的完整对话历史。
func (h *AdminHandler) GetConversation(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的用户 ID",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    h.conversations.GetHistory(userID),
	})
}

// ClearConversation 清空指定用户的对话历史，返回清除的条数。
func (h *AdminHandler) ClearConversation(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的用户 ID",
			"data":    nil,
		})
		return
	}

	removed := h.conversations.ClearConversation(userID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"removed": removed},
	})
}

// Status 返回服务运行状态。
func (h *AdminHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"uptime":              time.Since(h.startedAt).String(),
			"model":               config.Conf.Claude.Model,
			"activeConversations": len(h.conversations.ListConversations()),
		},
	})
}
