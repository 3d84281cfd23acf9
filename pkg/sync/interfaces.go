package sync

import (
	"context"
	"net/http"

	"github.com/dmhtech/assetsync/pkg/models"
	"github.com/dmhtech/assetsync/pkg/store"
)

//go:generate mockgen -destination=mock_sync.go -package=sync github.com/dmhtech/assetsync/pkg/sync SourceClient,TargetClient,TargetReader,AssetIndex,Cache

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SourceClient fetches device records from the monitoring platform.
type SourceClient interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	GetDeviceDetail(ctx context.Context, id string) (models.Device, error)
}

// TargetReader provides read access to the CMDB asset inventory.
type TargetReader interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
}

// TargetClient provides write access to the CMDB. CreateAsset returns the
// new asset's id. Both calls surface schema rejections as errors
// implementing FieldRejection so the executor can strip and retry.
type TargetClient interface {
	CreateAsset(ctx context.Context, ciType string, fields map[string]string) (string, error)
	UpdateAsset(ctx context.Context, id string, fields map[string]string) error
}

// AssetIndex is the read-only lookup the planner matches devices against.
type AssetIndex interface {
	FindByName(name string) (models.Asset, bool)
	FindBySerial(serial, ciType string) (models.Asset, bool)
}

// Cache persists fetched inventories and run history between runs.
type Cache interface {
	SaveDevice(device models.Device) error
	HasDevice(id string) (bool, error)
	ListDevices() ([]models.Device, error)
	ReplaceAssets(assets []models.Asset) error
	ListAssets() ([]models.Asset, error)
	SaveRun(run *store.SyncRun) error
}

// FieldRejection is implemented by target errors that identify which
// submitted fields the CMDB schema refused.
type FieldRejection interface {
	error
	RejectedFields() []string
}
