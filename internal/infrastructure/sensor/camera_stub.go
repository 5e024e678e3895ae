//go:build !gocv
// +build !gocv

package sensor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"volume-mapper/internal/domain/entity"
)

type Camera struct{}

// OpenCamera возвращает ошибку, если сборка без тега gocv.
func OpenCamera(ctx context.Context, opts CameraOptions, logger *zap.SugaredLogger) (*Camera, error) {
	_ = ctx
	_ = opts
	_ = logger
	return nil, errors.New("gocv build tag is not enabled")
}

// PollDepthFrame ничего не отдаёт без OpenCV.
func (c *Camera) PollDepthFrame() (*entity.DepthFrame, bool) {
	return nil, false
}

// PollColorFrame ничего не отдаёт без OpenCV.
func (c *Camera) PollColorFrame() (*entity.ColorFrame, bool) {
	return nil, false
}

func (c *Camera) Close() error {
	return nil
}
