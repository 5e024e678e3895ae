package opc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

var (
	ErrNotConnected = errors.New("opc: not connected, packet dropped")
	ErrQueueFull    = errors.New("opc: send queue is full, packet dropped")
	ErrClosed       = errors.New("opc: client is closed")
)

// Options настройки клиента OPC.
type Options struct {
	Addr         string
	QueueSize    int           // пакетов в очереди на отправку
	EventBuffer  int           // событий до того, как новые начнут отбрасываться
	MinBackoff   time.Duration // пауза после первой неудачи
	MaxBackoff   time.Duration // потолок паузы между попытками
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Clock        clock.Clock
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = "127.0.0.1:7890"
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 16
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 64
	}
	if o.MinBackoff <= 0 {
		o.MinBackoff = 250 * time.Millisecond
	}
	if o.MaxBackoff < o.MinBackoff {
		o.MaxBackoff = 5 * time.Second
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 2 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = time.Second
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// Client держит TCP-соединение с контроллером светодиодов (например, Fadecandy).
// Write только кладёт пакет в очередь; запись в сокет идёт в отдельной горутине.
type Client struct {
	opts   Options
	logger *zap.SugaredLogger
	dialer net.Dialer
	events chan entity.LinkEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    connState
	closed   bool
	conn     net.Conn
	queue    chan []byte
	backoff  time.Duration
	nextDial time.Time
}

// NewClient создаёт клиента. Соединение устанавливается при первом Update.
func NewClient(opts Options, logger *zap.SugaredLogger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		opts:   opts,
		logger: logger.With("opc", opts.Addr),
		events: make(chan entity.LinkEvent, opts.EventBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Write копирует пакет в очередь. Без соединения или при полной очереди пакет
// отбрасывается с событием ошибки.
func (c *Client) Write(packet []byte) {
	c.mu.Lock()
	if c.state != stateConnected || c.closed {
		c.mu.Unlock()
		c.emit(entity.LinkError, ErrNotConnected)
		return
	}
	queue := c.queue
	c.mu.Unlock()

	buf := make([]byte, len(packet))
	copy(buf, packet)

	select {
	case queue <- buf:
	default:
		c.emit(entity.LinkError, ErrQueueFull)
	}
}

// Update запускает попытку подключения, если соединения нет и пауза истекла.
func (c *Client) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != stateDisconnected {
		return
	}
	if c.opts.Clock.Now().Before(c.nextDial) {
		return
	}

	c.state = stateConnecting
	c.wg.Add(1)
	go c.dial()
}

// Connected сообщает, установлено ли соединение.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected
}

// DrainEvents забирает все накопленные события.
func (c *Client) DrainEvents() []entity.LinkEvent {
	var out []entity.LinkEvent
	for {
		select {
		case ev := <-c.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Close рвёт соединение и ждёт завершения фоновых горутин.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	c.cancel()
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	c.state = stateDisconnected
	c.mu.Unlock()

	c.wg.Wait()
	return err
}

func (c *Client) dial() {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.DialTimeout)
	conn, err := c.dialer.DialContext(ctx, "tcp", c.opts.Addr)
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.state = stateDisconnected
		c.scheduleRetryLocked()
		retry := c.backoff
		c.mu.Unlock()
		c.logger.Debugf("connect failed, retry in %s: %v", retry, err)
		c.emit(entity.LinkError, fmt.Errorf("connect: %w", err))
		return
	}

	queue := make(chan []byte, c.opts.QueueSize)
	c.conn = conn
	c.queue = queue
	c.state = stateConnected
	c.backoff = 0
	c.wg.Add(1)
	go c.writeLoop(conn, queue)
	c.mu.Unlock()

	c.logger.Infof("connected")
	c.emit(entity.LinkConnected, nil)
}

func (c *Client) writeLoop(conn net.Conn, queue <-chan []byte) {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case packet := <-queue:
			if err := conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
				c.drop(conn, err)
				return
			}
			if _, err := conn.Write(packet); err != nil {
				c.drop(conn, err)
				return
			}
		}
	}
}

// drop закрывает оборванное соединение и планирует переподключение.
func (c *Client) drop(conn net.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	conn.Close()
	c.conn = nil
	c.queue = nil
	c.state = stateDisconnected
	c.scheduleRetryLocked()
	c.mu.Unlock()

	c.logger.Warnf("connection lost: %v", cause)
	c.emit(entity.LinkDisconnected, fmt.Errorf("write: %w", cause))
}

// scheduleRetryLocked удваивает паузу между попытками в пределах [MinBackoff, MaxBackoff].
func (c *Client) scheduleRetryLocked() {
	switch {
	case c.backoff <= 0:
		c.backoff = c.opts.MinBackoff
	case c.backoff < c.opts.MaxBackoff:
		c.backoff *= 2
	}
	if c.backoff > c.opts.MaxBackoff {
		c.backoff = c.opts.MaxBackoff
	}
	c.nextDial = c.opts.Clock.Now().Add(c.backoff)
}

func (c *Client) emit(kind entity.LinkEventKind, err error) {
	ev := entity.LinkEvent{Kind: kind, Addr: c.opts.Addr, Err: err, At: c.opts.Clock.Now()}
	select {
	case c.events <- ev:
	default:
	}
}

// Проверка реализации интерфейса
var _ port.LedController = (*Client)(nil)
