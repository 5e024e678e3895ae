//go:build gocv
// +build gocv

package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// Camera читает цвет и глубину с двух устройств захвата OpenCV.
// Каждое устройство читается своей горутиной, Poll отдаёт только новые кадры.
type Camera struct {
	opts   CameraOptions
	logger *zap.SugaredLogger
	color  *gocv.VideoCapture
	depth  *gocv.VideoCapture
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	latestColor *entity.ColorFrame
	latestDepth *entity.DepthFrame
	newColor    bool
	newDepth    bool
}

// OpenCamera открывает устройства и запускает чтение кадров.
func OpenCamera(ctx context.Context, opts CameraOptions, logger *zap.SugaredLogger) (*Camera, error) {
	opts = opts.withDefaults()

	color, err := gocv.OpenVideoCapture(opts.ColorDevice)
	if err != nil {
		return nil, fmt.Errorf("open color device %v: %w", opts.ColorDevice, err)
	}
	depth, err := gocv.OpenVideoCapture(opts.DepthDevice)
	if err != nil {
		color.Close()
		return nil, fmt.Errorf("open depth device %v: %w", opts.DepthDevice, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Camera{
		opts:   opts,
		logger: logger,
		color:  color,
		depth:  depth,
		cancel: cancel,
	}
	c.wg.Add(2)
	go c.readLoop(ctx, color, c.storeColor)
	go c.readLoop(ctx, depth, c.storeDepth)
	return c, nil
}

func (c *Camera) readLoop(ctx context.Context, vc *gocv.VideoCapture, store func(gocv.Mat, uint64) error) {
	defer c.wg.Done()

	mat := gocv.NewMat()
	defer mat.Close()

	var seq uint64
	for ctx.Err() == nil {
		if ok := vc.Read(&mat); !ok || mat.Empty() {
			// Устройство ещё не отдало кадр.
			time.Sleep(c.opts.RetryInterval)
			continue
		}
		if err := store(mat, seq); err != nil {
			c.logger.Warnf("drop frame %d: %v", seq, err)
		}
		seq++
	}
}

func (c *Camera) storeColor(mat gocv.Mat, seq uint64) error {
	if mat.Channels() != 3 {
		return fmt.Errorf("color frame has %d channels", mat.Channels())
	}
	data := mat.ToBytes()
	img := entity.NewImage(mat.Cols(), mat.Rows(), 3)
	for i := 0; i+2 < len(data) && i+2 < len(img.Pix); i += 3 {
		// OpenCV хранит BGR.
		img.Pix[i] = float64(data[i+2]) / 255
		img.Pix[i+1] = float64(data[i+1]) / 255
		img.Pix[i+2] = float64(data[i]) / 255
	}

	c.mu.Lock()
	c.latestColor = &entity.ColorFrame{Image: img, Seq: seq, Timestamp: time.Now()}
	c.newColor = true
	c.mu.Unlock()
	return nil
}

func (c *Camera) storeDepth(mat gocv.Mat, seq uint64) error {
	src := mat
	if mat.Channels() > 1 {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
		src = gray
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	src.ConvertToWithParams(&scaled, gocv.MatTypeCV32F, float32(1/c.opts.MaxDepth), 0)

	data, err := scaled.DataPtrFloat32()
	if err != nil {
		return fmt.Errorf("read depth samples: %w", err)
	}
	img := entity.NewImage(scaled.Cols(), scaled.Rows(), 1)
	for i := range img.Pix {
		if i >= len(data) {
			break
		}
		img.Pix[i] = float64(data[i])
	}

	c.mu.Lock()
	c.latestDepth = &entity.DepthFrame{Image: img, Seq: seq, Timestamp: time.Now()}
	c.newDepth = true
	c.mu.Unlock()
	return nil
}

func (c *Camera) PollDepthFrame() (*entity.DepthFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.newDepth {
		return nil, false
	}
	c.newDepth = false
	return c.latestDepth, true
}

func (c *Camera) PollColorFrame() (*entity.ColorFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.newColor {
		return nil, false
	}
	c.newColor = false
	return c.latestColor, true
}

// Close останавливает чтение и освобождает устройства.
func (c *Camera) Close() error {
	c.cancel()
	c.wg.Wait()
	return multierr.Combine(c.color.Close(), c.depth.Close())
}

// Проверка реализации интерфейса
var _ port.Sensor = (*Camera)(nil)
