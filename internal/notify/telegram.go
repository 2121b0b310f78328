// File: internal/notify/telegram.go
package notify

import (
	"context"
	"time"

	"flipradar_backend/internal/listing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Dispatcher sends one ranked digest batch to a chat. It returns the items
// that were actually delivered; a text-only fallback still counts as
// delivered. Partial failure is expected and is not an error by itself.
type Dispatcher interface {
	SendDigest(ctx context.Context, chatID int64, items []listing.Listing) ([]listing.Listing, error)
}

// TelegramDispatcher delivers digests through the Telegram Bot API as rich
// photo cards, degrading to single-photo sends and finally to plain text
// when media delivery fails.
type TelegramDispatcher struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegramDispatcher authenticates the bot and returns a dispatcher.
func NewTelegramDispatcher(token string, logger *zap.Logger) (*TelegramDispatcher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramDispatcher{bot: bot, logger: logger.Named("telegram")}, nil
}

func (d *TelegramDispatcher) SendDigest(ctx context.Context, chatID int64, items []listing.Listing) ([]listing.Listing, error) {
	now := time.Now().UTC()

	var withPhoto, textOnly []listing.Listing
	for _, l := range items {
		if l.PhotoURL != nil && *l.PhotoURL != "" {
			withPhoto = append(withPhoto, l)
		} else {
			textOnly = append(textOnly, l)
		}
	}

	var delivered []listing.Listing

	// Telegram media groups need 2..10 entries; a lone photo goes out as a
	// plain photo send.
	if len(withPhoto) >= 2 {
		media := make([]interface{}, 0, len(withPhoto))
		for i := range withPhoto {
			photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(*withPhoto[i].PhotoURL))
			photo.Caption = BuildCaption(&withPhoto[i], now)
			photo.ParseMode = tgbotapi.ModeMarkdown
			media = append(media, photo)
		}
		if _, err := d.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err == nil {
			delivered = append(delivered, withPhoto...)
			withPhoto = nil
		} else {
			d.logger.Warn("media group send failed, retrying items individually",
				zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	for i := range withPhoto {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		l := &withPhoto[i]
		caption := BuildCaption(l, now)

		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(*l.PhotoURL))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		if _, err := d.bot.Send(photo); err == nil {
			delivered = append(delivered, *l)
			continue
		} else {
			d.logger.Warn("photo send failed, falling back to text",
				zap.Int64("chat_id", chatID),
				zap.String("listing", l.Source+"/"+l.ExternalID),
				zap.Error(err))
		}
		if d.sendText(chatID, l, caption) {
			delivered = append(delivered, *l)
		}
	}

	for i := range textOnly {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		l := &textOnly[i]
		if d.sendText(chatID, l, BuildCaption(l, now)) {
			delivered = append(delivered, *l)
		}
	}

	return delivered, nil
}

func (d *TelegramDispatcher) sendText(chatID int64, l *listing.Listing, caption string) bool {
	msg := tgbotapi.NewMessage(chatID, caption)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := d.bot.Send(msg); err != nil {
		d.logger.Error("text send failed",
			zap.Int64("chat_id", chatID),
			zap.String("listing", l.Source+"/"+l.ExternalID),
			zap.Error(err))
		return false
	}
	return true
}
