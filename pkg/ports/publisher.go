package ports

import (
	"context"

	"github.com/aretw0/unitgrid/pkg/domain"
)

// Publisher fans an update message out to the sessions subscribed to its project.
// Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, msg domain.UpdateMessage) error
}
