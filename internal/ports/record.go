package ports

import (
	"context"

	"orgtasks/internal/types"
)

// RecordClientPort is the platform's describe/query/CRUD REST surface.
// Implementations return *types.PlatformError when the platform rejects
// a request with an error body.
type RecordClientPort interface {
	// Describe fetches the field metadata of an object schema. Never
	// cached; callers re-describe on every use.
	Describe(ctx context.Context, object string) ([]types.FieldMetadata, error)

	// Query runs a SOQL query and returns every row, following
	// pagination until the result set is exhausted.
	Query(ctx context.Context, soql string) ([]types.Record, error)

	Create(ctx context.Context, object string, fields map[string]any) (types.SaveResult, error)
	Delete(ctx context.Context, object string, id string) error

	// Restful performs a raw call against the versioned REST root.
	// An empty endpoint addresses the root itself (the identity
	// endpoint).
	Restful(ctx context.Context, endpoint string, method string, body any) (map[string]any, error)
}
