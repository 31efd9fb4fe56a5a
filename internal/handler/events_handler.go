package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tg-claude-relay/internal/service"
	"tg-claude-relay/pkg/log"
	"tg-claude-relay/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// EventsHandler 通过 WebSocket 向管理端推送转发回合事件。
type EventsHandler struct {
	monitor    *service.Monitor
	jwtManager *token.JWTManager
}

// NewEventsHandler 创建一个新的 EventsHandler。
func NewEventsHandler(monitor *service.Monitor, jwtManager *token.JWTManager) *EventsHandler {
	return &EventsHandler{monitor: monitor, jwtManager: jwtManager}
}

// Handle 处理一个传入的 WebSocket 连接。
// WebSocket 无法携带 Authorization 头，token 经路径参数传入。
func (h *EventsHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "无效的 token",
			"data":    nil,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("事件订阅连接已建立，管理员: %s", claims.Username)

	events, cancel := h.monitor.Subscribe()
	defer cancel()

	// 读循环只用于感知连接关闭
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Warnf("推送事件失败: %v", err)
				return
			}
		}
	}
}
