package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-claude-relay/pkg/log"
)

const (
	accessDeniedText   = "❌ Access denied. You are not authorized to use this bot."
	unknownCommandText = "Unknown command. Use /help to see what I can do."
)

// handleStart 处理 /start 命令。
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	log.Infof("用户 @%s (ID: %d) 启动了 bot", msg.From.UserName, msg.From.ID)

	welcome := fmt.Sprintf(
		"👋 Hi, %s!\n\n"+
			"I relay your messages to the Claude API and keep the context of "+
			"our conversation so it feels natural.\n\n"+
			"📝 Commands:\n"+
			"/start - Start working with the bot\n"+
			"/clear - Clear the conversation context\n"+
			"/help - Show help\n\n"+
			"🤖 Model: %s",
		msg.From.FirstName, b.claude.Model,
	)
	_ = b.reply(msg.Chat.ID, welcome)
}

// handleClear 处理 /clear 命令：清空历史并报告清除条数。
func (b *Bot) handleClear(msg *tgbotapi.Message) {
	count := b.relay.Reset(msg.From.ID)
	log.Infof("用户 @%s (ID: %d) 清空了对话历史", msg.From.UserName, msg.From.ID)

	_ = b.reply(msg.Chat.ID, fmt.Sprintf(
		"🧹 Context cleared!\nRemoved messages: %d\n\nYou can start a new conversation.", count))
}

// handleHelp 处理 /help 命令。
func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	help := fmt.Sprintf(
		"📖 How to use this bot\n\n"+
			"💬 Just send any text message and I will forward it to Claude. "+
			"The conversation history is kept between messages, so follow-up "+
			"questions work as expected.\n\n"+
			"📝 Commands:\n"+
			"/start - Start working with the bot\n"+
			"/clear - Clear the conversation history and start over\n"+
			"/help - Show this help\n\n"+
			"⚙️ Settings:\n"+
			"Model: %s\n"+
			"Max tokens: %d\n\n"+
			"💡 Tips:\n"+
			"- Use /clear when switching to a new topic\n"+
			"- The bot only handles text messages\n"+
			"- History lives in memory and is reset when the bot restarts",
		b.claude.Model, b.claude.MaxTokens,
	)
	_ = b.reply(msg.Chat.ID, help)
}
