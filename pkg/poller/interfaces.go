package poller

import (
	"context"
	"time"

	"github.com/carverauto/visionradar/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Fetcher retrieves dashboard resources from the backend.
type Fetcher interface {
	Cameras(ctx context.Context) ([]models.Camera, error)
	Predictions(ctx context.Context) ([]models.Prediction, error)
	Status(ctx context.Context) (*models.Status, error)
	SystemErrors(ctx context.Context) ([]models.SystemError, error)
}

// Sink receives each resource as it lands. Every delivery carries the
// full replacement value for that resource.
type Sink interface {
	SetCameras(cameras []models.Camera)
	SetPredictions(predictions []models.Prediction)
	SetStatus(status *models.Status)
	SetErrors(errs []models.SystemError)
}
