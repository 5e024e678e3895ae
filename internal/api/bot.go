package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "volume-mapper/internal/application"
	"volume-mapper/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я управляю сканером объёма по светодиодам.

📋 Команды:
/status — состояние сканирования
/background — снять фон заново
/clear — очистить срезы объёма
/footprint [led] — засветка светодиода
/mask [led] — маска глубины
/slice <z> [led] — z-срез объёма
/subscribe — получать события контроллера
/unsubscribe — отписаться
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Уберите объект из кадра и отправьте /background
2️⃣ Поставьте объект, сканер сам переберёт светодиоды
3️⃣ Смотрите засветки /footprint и срезы /slice

💡 Без номера светодиода показывается последний обновлённый.

📋 Команды:
/status, /background, /clear, /footprint, /mask, /slice, /subscribe, /unsubscribe`

	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgNotCommand      = "📋 Я понимаю только команды. Используйте /help для справки."
	msgBackgroundSaved = "✅ Фон сохранён."
	msgNoDepth         = "⚠️ Кадров глубины ещё не было, фон не снят."
	msgCleared         = "🧹 Срезы объёма очищены."
	msgSubscribed      = "🔔 Вы подписаны на события контроллера."
	msgUnsubscribed    = "🔕 Подписка отменена."
	msgNoFootprint     = "⏳ Засветка ещё не посчитана."
	msgNoMask          = "⏳ Маска глубины ещё не посчитана (нет фона или кадров)."
	msgNoSlice         = "⏳ Этот срез ещё пуст."
	msgUnknownLed      = "❓ Нет светодиода с таким номером."
	msgBadArgs         = "⚠️ Неверные аргументы. Пример: /slice 10 2"
	msgInternalError   = "⚠️ Не удалось выполнить команду. Попробуйте позже."

	noticeBuffer = 32
)

// ScanControl — управление циклом сканирования (Runner).
type ScanControl interface {
	Status(ctx context.Context) (app.Status, error)
	CaptureBackground(ctx context.Context) (bool, error)
	ClearGrid(ctx context.Context) error
}

// Snapshots рисует картинки реконструкции.
type Snapshots interface {
	Footprint(ctx context.Context, led int) (*app.Snapshot, error)
	Mask(ctx context.Context, led int) (*app.Snapshot, error)
	Slice(ctx context.Context, led, z int) (*app.Snapshot, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	sender    sender
	scan      ScanControl
	snapshots Snapshots
	operators *app.OperatorService
	logger    *zap.SugaredLogger
	notices   chan string
}

// reply — ответ на команду: текст или картинка с подписью.
type reply struct {
	text  string
	photo *app.Snapshot
}

// NewBot создаёт нового бота
func NewBot(token string, scan ScanControl, snapshots Snapshots, operators *app.OperatorService, logger *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	b := newBot(api, scan, snapshots, operators, logger)
	b.api = api
	return b, nil
}

func newBot(s sender, scan ScanControl, snapshots Snapshots, operators *app.OperatorService, logger *zap.SugaredLogger) *Bot {
	return &Bot{
		sender:    s,
		scan:      scan,
		snapshots: snapshots,
		operators: operators,
		logger:    logger,
		notices:   make(chan string, noticeBuffer),
	}
}

// Run запускает основной цикл обработки сообщений и рассылки событий
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case text := <-b.notices:
			b.broadcast(ctx, text)
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// Notify ставит уведомление в очередь рассылки, не блокируя цикл сканирования.
func (b *Bot) Notify(ctx context.Context, text string) {
	_ = ctx
	select {
	case b.notices <- text:
	default:
		b.logger.Warnw("notice dropped, queue is full", "text", text)
	}
}

// broadcast рассылает текст всем подписчикам
func (b *Bot) broadcast(ctx context.Context, text string) {
	chats, err := b.operators.Subscribers(ctx)
	if err != nil {
		b.logger.Errorw("list subscribers", "error", err)
		return
	}
	for _, chatID := range chats {
		b.sendMessage(chatID, text)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, msgNotCommand)
		return
	}

	r := b.execute(ctx, msg.From.ID, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	if r.photo != nil {
		b.sendPhoto(msg.Chat.ID, r.photo)
		return
	}
	b.sendMessage(msg.Chat.ID, r.text)
}

// execute выполняет команду и возвращает ответ
func (b *Bot) execute(ctx context.Context, userID, chatID int64, command, args string) reply {
	if _, err := b.operators.Get(ctx, userID, chatID); err != nil {
		b.logger.Errorw("get operator", "user", userID, "error", err)
		return reply{text: msgInternalError}
	}

	switch command {
	case "start":
		return reply{text: msgStart}

	case "help":
		return reply{text: msgHelp}

	case "status":
		st, err := b.scan.Status(ctx)
		if err != nil {
			return b.failure("status", err)
		}
		return reply{text: formatStatus(st)}

	case "background":
		ok, err := b.scan.CaptureBackground(ctx)
		if err != nil {
			return b.failure("background", err)
		}
		if !ok {
			return reply{text: msgNoDepth}
		}
		return reply{text: msgBackgroundSaved}

	case "clear":
		if err := b.scan.ClearGrid(ctx); err != nil {
			return b.failure("clear", err)
		}
		return reply{text: msgCleared}

	case "subscribe":
		if _, err := b.operators.Subscribe(ctx, userID, chatID); err != nil {
			return b.failure("subscribe", err)
		}
		return reply{text: msgSubscribed}

	case "unsubscribe":
		if _, err := b.operators.Unsubscribe(ctx, userID, chatID); err != nil {
			return b.failure("unsubscribe", err)
		}
		return reply{text: msgUnsubscribed}

	case "footprint", "mask":
		nums, ok := parseInts(args, 0, 1)
		if !ok {
			return reply{text: msgBadArgs}
		}
		led := optional(nums, 0)
		var (
			snap *app.Snapshot
			err  error
		)
		if command == "footprint" {
			snap, err = b.snapshots.Footprint(ctx, led)
		} else {
			snap, err = b.snapshots.Mask(ctx, led)
		}
		if err != nil {
			return b.failure(command, err)
		}
		return reply{photo: snap}

	case "slice":
		nums, ok := parseInts(args, 1, 2)
		if !ok || nums[0] < 0 {
			return reply{text: msgBadArgs}
		}
		snap, err := b.snapshots.Slice(ctx, optional(nums, 1), nums[0])
		if err != nil {
			return b.failure(command, err)
		}
		return reply{photo: snap}

	default:
		return reply{text: msgUnknownCommand}
	}
}

// failure переводит ошибку в сообщение для оператора
func (b *Bot) failure(command string, err error) reply {
	switch {
	case errors.Is(err, app.ErrUnknownLed):
		return reply{text: msgUnknownLed}
	case errors.Is(err, app.ErrNoFootprint):
		return reply{text: msgNoFootprint}
	case errors.Is(err, app.ErrNoMask):
		return reply{text: msgNoMask}
	case errors.Is(err, app.ErrNoSlice):
		return reply{text: msgNoSlice}
	}
	b.logger.Errorw("command failed", "command", command, "error", err)
	return reply{text: msgInternalError}
}

func formatStatus(st app.Status) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Сессия %s\n", st.SessionID)
	fmt.Fprintf(&sb, "Светодиод %d/%d, кадр %d/%d\n",
		st.State.Led, st.Settings.NumLeds, st.State.Frame, st.Settings.FramesPerLed)
	if st.BackgroundSet {
		sb.WriteString("Фон: снят\n")
	} else {
		fmt.Fprintf(&sb, "Фон: не снят (прогрев %d)\n", st.WarmupRemaining)
	}
	fmt.Fprintf(&sb, "Кадры: цвет %d, глубина %d, тиков %d\n", st.ColorFrames, st.DepthFrames, st.Ticks)
	if st.FootprintMean > 0 || st.MaskCoverage > 0 {
		fmt.Fprintf(&sb, "Последний светодиод %d: засветка %.4f, маска %.1f%%\n",
			st.LastUpdatedLed, st.FootprintMean, st.MaskCoverage*100)
	}
	if st.LinkConnected {
		sb.WriteString("Контроллер: подключён")
	} else {
		sb.WriteString("Контроллер: нет связи")
	}
	return sb.String()
}

// parseInts разбирает от lo до hi целых аргументов
func parseInts(args string, lo, hi int) ([]int, bool) {
	fields := strings.Fields(args)
	if len(fields) < lo || len(fields) > hi {
		return nil, false
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// optional возвращает аргумент по индексу или -1 (последний обновлённый светодиод)
func optional(nums []int, i int) int {
	if i < len(nums) {
		return nums[i]
	}
	return -1
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Errorw("send message", "chat", chatID, "error", err)
	}
}

// sendPhoto отправляет PNG с подписью
func (b *Bot) sendPhoto(chatID int64, snap *app.Snapshot) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  strings.ReplaceAll(snap.Title, " ", "_") + ".png",
		Bytes: snap.PNG,
	})
	photo.Caption = snap.Title
	if _, err := b.sender.Send(photo); err != nil {
		b.logger.Errorw("send photo", "chat", chatID, "error", err)
	}
}

// Проверка реализации интерфейса
var _ port.Notifier = (*Bot)(nil)
