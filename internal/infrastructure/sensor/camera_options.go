package sensor

import "time"

// CameraOptions настройки захвата через OpenCV.
type CameraOptions struct {
	ColorDevice   any     // индекс устройства или URL потока с цветом
	DepthDevice   any     // устройство с картой глубины (одноканальный поток)
	MaxDepth      float64 // сырое значение, соответствующее глубине 1.0 (2047 для 11-битного Kinect)
	RetryInterval time.Duration
}

func (o CameraOptions) withDefaults() CameraOptions {
	if o.ColorDevice == nil {
		o.ColorDevice = 0
	}
	if o.DepthDevice == nil {
		o.DepthDevice = 1
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 2047
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 5 * time.Millisecond
	}
	return o
}
