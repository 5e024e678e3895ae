package app

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"volume-mapper/internal/domain/entity"
)

const DefaultTickInterval = 2 * time.Millisecond

// Runner — единственная горутина, которой принадлежит состояние сканирования.
// Внешние вызовы (бот, перечитывание конфига) ставятся в очередь и выполняются между тиками.
type Runner struct {
	svc      *ScanService
	clk      clock.Clock
	interval time.Duration
	commands chan func(*ScanService)
}

func NewRunner(svc *ScanService, clk clock.Clock, interval time.Duration) *Runner {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Runner{
		svc:      svc,
		clk:      clk,
		interval: interval,
		commands: make(chan func(*ScanService)),
	}
}

// Run крутит цикл до отмены контекста.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clk.Ticker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-r.commands:
			fn(r.svc)
		case <-ticker.C:
			r.svc.Tick()
		}
	}
}

// Do выполняет fn в горутине цикла и ждёт завершения.
func (r *Runner) Do(ctx context.Context, fn func(*ScanService)) error {
	done := make(chan struct{})
	cmd := func(s *ScanService) {
		defer close(done)
		fn(s)
	}

	select {
	case r.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) Status(ctx context.Context) (Status, error) {
	var st Status
	err := r.Do(ctx, func(s *ScanService) { st = s.Status() })
	return st, err
}

func (r *Runner) CaptureBackground(ctx context.Context) (bool, error) {
	var ok bool
	err := r.Do(ctx, func(s *ScanService) { ok = s.CaptureBackground() })
	return ok, err
}

func (r *Runner) ClearGrid(ctx context.Context) error {
	return r.Do(ctx, func(s *ScanService) { s.ClearGrid() })
}

func (r *Runner) Configure(ctx context.Context, settings entity.ScanSettings) error {
	return r.Do(ctx, func(s *ScanService) { s.Configure(settings) })
}

// ErrUnknownLed возвращается, когда светодиода с таким номером нет.
var ErrUnknownLed = errors.New("unknown led")

// LedView возвращает копию состояния светодиода; id < 0 — последний обновлённый.
func (r *Runner) LedView(ctx context.Context, id int) (entity.LedView, error) {
	var (
		view entity.LedView
		ok   bool
	)
	if err := r.Do(ctx, func(s *ScanService) { view, ok = s.LedView(id) }); err != nil {
		return entity.LedView{}, err
	}
	if !ok {
		return entity.LedView{}, ErrUnknownLed
	}
	return view, nil
}
