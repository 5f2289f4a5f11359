package notify

import (
	"fmt"
	"log"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier — best-effort сток уведомлений. Никогда не блокирует цикл
// и не возвращает ошибок: не доставили — залогировали и поехали дальше.
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
	SendImage(name string, data []byte, caption string)
}

// Telegram — пассивный нотифайер: только исходящие сообщения и артефакты.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		log.Printf("[NOTIFY] send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// SendImage шлёт артефакт (например, график цикла) документом.
func (t *Telegram) SendImage(name string, data []byte, caption string) {
	if t == nil || t.bot == nil || t.chatID == 0 || len(data) == 0 {
		return
	}
	doc := tgbot.NewDocument(t.chatID, tgbot.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := t.bot.Send(doc); err != nil {
		log.Printf("[NOTIFY] send image: %v", err)
	}
}

// Stdout — заглушка, всё логирует.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Send(msg string)                  { log.Println(msg) }
func (s *Stdout) Sendf(format string, args ...any) { log.Printf(format, args...) }
func (s *Stdout) SendImage(name string, data []byte, caption string) {
	log.Printf("IMAGE %s (%d bytes): %s", name, len(data), caption)
}
