// Package metrics defines the snapshot source contract and the local host
// collector behind it.
package metrics

import (
	"context"

	"vpswatch/internal/model"
)

// Source produces a point-in-time snapshot of resource readings. A section
// missing from the snapshot means the reading could not be collected this
// cycle; an error means nothing could be collected at all.
type Source interface {
	Collect(ctx context.Context) (model.MetricsSnapshot, error)
}
