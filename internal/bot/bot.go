// Package bot 实现了 Telegram 传输层：长轮询、白名单校验与命令分发。
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-claude-relay/internal/config"
	"tg-claude-relay/internal/service"
	"tg-claude-relay/pkg/log"
)

// Bot 将 Telegram 消息接入 RelayService。
type Bot struct {
	api     *tgbotapi.BotAPI
	relay   service.RelayService
	claude  config.ClaudeConfig
	allowed map[string]struct{}
}

// New 创建并连接一个 Telegram Bot。
func New(cfg config.TelegramConfig, claudeCfg config.ClaudeConfig, relay service.RelayService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Bot{
		api:     api,
		relay:   relay,
		claude:  claudeCfg,
		allowed: cfg.AllowedSet(),
	}, nil
}

// Run 启动长轮询循环，阻塞直到 ctx 取消。
// 每条更新在独立的 goroutine 中处理；同一用户的回合顺序由 RelayService 保证。
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	log.Infof("Telegram bot @%s 已开始轮询", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// isAuthorized 校验发送者是否在用户名白名单中。
func (b *Bot) isAuthorized(msg *tgbotapi.Message) bool {
	username := msg.From.UserName
	if username == "" {
		log.Warnf("用户 %d 没有用户名，拒绝访问", msg.From.ID)
		return false
	}
	if _, ok := b.allowed[strings.ToLower(username)]; !ok {
		log.Warnf("未授权的访问尝试: @%s (ID: %d)", username, msg.From.ID)
		return false
	}
	return true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAuthorized(msg) {
		b.reply(msg.Chat.ID, accessDeniedText)
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "clear":
		b.handleClear(msg)
	case "help":
		b.handleHelp(msg)
	case "":
		b.handleText(ctx, msg)
	default:
		b.reply(msg.Chat.ID, unknownCommandText)
	}
}

// handleText 处理普通文本消息：发送 typing 状态后交给 RelayService。
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	preview := msg.Text
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	log.Infof("收到 @%s (ID: %d) 的消息: %s", msg.From.UserName, msg.From.ID, preview)

	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		log.Warnf("发送 typing 状态失败: %v", err)
	}

	chatID := msg.Chat.ID
	err := b.relay.HandleMessage(ctx, msg.From.ID, msg.Text, func(chunk string) error {
		return b.reply(chatID, chunk)
	})
	if err != nil {
		log.Errorf("向用户 %d 投递回复失败: %v", msg.From.ID, err)
	}
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
