package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/MegaGuyRy/market-prediction/internal/adapters/config"
	"github.com/MegaGuyRy/market-prediction/pkg/logger"
	"github.com/MegaGuyRy/market-prediction/pkg/models"
)

// Notifier sends pipeline run digests to a Telegram chat
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{
		api:    bot,
		chatID: cfg.ChatID,
	}, nil
}

// SendRunDigest sends a summary of a completed pipeline run
func (n *Notifier) SendRunDigest(stored int, sector *models.SectorContext, candidates []models.Candidate) error {
	var b strings.Builder

	fmt.Fprintf(&b, "*News pipeline run* `%s`\n", time.Now().UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Stored items: %d\n", stored)

	if sector != nil {
		fmt.Fprintf(&b, "Sentiment: avg %.2f, %d bullish / %d bearish (balance %+d)\n",
			sector.AvgSentiment, sector.BullishItems, sector.BearishItems, sector.SentimentBalance)

		for _, item := range sector.TopNews {
			fmt.Fprintf(&b, "• [%.2f] %s\n", item.Sentiment, truncate(item.Headline, 80))
		}
	}

	if len(candidates) > 0 {
		b.WriteString("\n*Candidates*\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "• %s (%.2f, %s) %s\n", c.Ticker, c.Priority, c.Source, truncate(c.Reason, 60))
		}
	}

	return n.sendMessageMarkdown(n.chatID, b.String())
}

// SendAlert sends a plain alert message
func (n *Notifier) SendAlert(text string) error {
	return n.sendMessageMarkdown(n.chatID, text)
}

func (n *Notifier) sendMessageMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	_, err := n.api.Send(msg)
	if err != nil {
		logger.Error("failed to send telegram message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
