package loader

import (
	"context"

	"fashionetl/internal/model"
)

// Sink is one destination for the clean table. Write reports failure through
// its error only; it never panics out to the caller.
type Sink interface {
	Name() string
	Write(ctx context.Context, table model.Table) error
}
