package ports

import "context"

// MetadataDeployerPort deploys one metadata bundle directory. The
// mechanism (packaging, transport, polling) belongs to the adapter.
type MetadataDeployerPort interface {
	Deploy(ctx context.Context, bundlePath string) error
}
