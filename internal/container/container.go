package container

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	app "volume-mapper/internal/application"
	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

type Container struct {
	ScanService     *app.ScanService
	Runner          *app.Runner
	OperatorService *app.OperatorService
	SnapshotService *app.SnapshotService
}

func New(
	settings entity.ScanSettings,
	sensor port.Sensor,
	out port.LedController,
	operatorRepo port.OperatorRepository,
	renderer port.SnapshotRenderer,
	clk clock.Clock,
	logger *zap.SugaredLogger,
) *Container {
	scanService := app.NewScanService(settings, sensor, out, logger)
	runner := app.NewRunner(scanService, clk, app.DefaultTickInterval)
	operatorService := app.NewOperatorService(operatorRepo)
	snapshotService := app.NewSnapshotService(runner, renderer)

	return &Container{
		ScanService:     scanService,
		Runner:          runner,
		OperatorService: operatorService,
		SnapshotService: snapshotService,
	}
}
