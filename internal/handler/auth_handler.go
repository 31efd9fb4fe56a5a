// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tg-claude-relay/internal/config"
	"tg-claude-relay/pkg/log"
	"tg-claude-relay/pkg/token"
)

// AuthHandler 处理管理 API 的登录请求。
type AuthHandler struct {
	adminCfg   config.AdminConfig
	jwtManager *token.JWTManager
}

// NewAuthHandler 创建一个新的 AuthHandler。
func NewAuthHandler(adminCfg config.AdminConfig, jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{adminCfg: adminCfg, jwtManager: jwtManager}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验管理员凭证并签发 access token。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求参数",
			"data":    nil,
		})
		return
	}

	if req.Username != h.adminCfg.Username || req.Password != h.adminCfg.Password {
		log.Warnf("管理 API 登录失败: %s", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "用户名或密码错误",
			"data":    nil,
		})
		return
	}

	accessToken, err := h.jwtManager.GenerateToken(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "生成 token 失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"accessToken": accessToken},
	})
}
