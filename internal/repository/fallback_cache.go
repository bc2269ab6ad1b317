package repository

import (
	"context"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

// FallbackCache is the local durable store that absorbs writes the
// remote record store rejected or could not reach. Lookup is by
// (userID, kind) only; reads return newest entries first. The write
// path is exposed only to the sync coordinator, the read path feeds
// display surfaces when the remote store is unavailable.
type FallbackCache interface {
	Append(ctx context.Context, entry entity.CacheEntry) error
	List(ctx context.Context, userID int64, kind entity.EntityKind) ([]entity.CacheEntry, error)
}
