package app

import (
	"context"
	"errors"
	"fmt"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// LedSource отдаёт копии состояния светодиодов (Runner в рабочем режиме).
type LedSource interface {
	LedView(ctx context.Context, id int) (entity.LedView, error)
}

type SnapshotService struct {
	leds     LedSource
	renderer port.SnapshotRenderer
}

var (
	ErrNoFootprint = errors.New("footprint is not computed yet")
	ErrNoMask      = errors.New("depth mask is not computed yet")
	ErrNoSlice     = errors.New("slice is not written yet")
)

// Snapshot — картинка для оператора.
type Snapshot struct {
	Led   int
	Title string
	PNG   []byte
}

// NewSnapshotService создаёт сервис, который рисует засветки, маски и срезы.
func NewSnapshotService(leds LedSource, renderer port.SnapshotRenderer) *SnapshotService {
	return &SnapshotService{leds: leds, renderer: renderer}
}

// Footprint рисует засветку светодиода.
func (s *SnapshotService) Footprint(ctx context.Context, led int) (*Snapshot, error) {
	view, err := s.leds.LedView(ctx, led)
	if err != nil {
		return nil, err
	}
	if view.Footprint.Empty() {
		return nil, ErrNoFootprint
	}
	return s.render(view.ID, fmt.Sprintf("footprint led %d", view.ID), view.Footprint)
}

// Mask рисует уверенность маски глубины.
func (s *SnapshotService) Mask(ctx context.Context, led int) (*Snapshot, error) {
	view, err := s.leds.LedView(ctx, led)
	if err != nil {
		return nil, err
	}
	if view.Mask == nil || view.Mask.Confidence.Empty() {
		return nil, ErrNoMask
	}
	return s.render(view.ID, fmt.Sprintf("mask led %d", view.ID), view.Mask.Confidence)
}

// Slice рисует z-срез объёма.
func (s *SnapshotService) Slice(ctx context.Context, led, z int) (*Snapshot, error) {
	view, err := s.leds.LedView(ctx, led)
	if err != nil {
		return nil, err
	}
	if z < 0 || z >= len(view.Slices) || view.Slices[z].Empty() {
		return nil, ErrNoSlice
	}
	return s.render(view.ID, fmt.Sprintf("slice z=%d led %d", z, view.ID), view.Slices[z])
}

func (s *SnapshotService) render(led int, title string, img *entity.Image) (*Snapshot, error) {
	if s.renderer == nil {
		return nil, errors.New("renderer is not configured")
	}
	data, err := s.renderer.Render(img)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return &Snapshot{Led: led, Title: title, PNG: data}, nil
}
