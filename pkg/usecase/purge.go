package usecase

import (
	"context"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
)

// PurgeFiltered deletes every chunk matching the filter and returns
// how many were removed. The store rejects an empty filter, so a
// guild-wide wipe must be requested explicitly.
func (uc *UseCases) PurgeFiltered(ctx context.Context, filter model.PurgeFilter) (int, error) {
	deleted, err := uc.store.DeleteByFilter(ctx, filter)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logging.From(ctx).Info("purged indexed chunks", "deleted", deleted)
	}
	return deleted, nil
}

// PurgeAuthor removes everything a single author contributed to the
// guild's memory, e.g. on an opt-out or deletion request.
func (uc *UseCases) PurgeAuthor(ctx context.Context, guildID types.GuildID, authorID types.AuthorID) (int, error) {
	return uc.PurgeFiltered(ctx, model.PurgeFilter{GuildID: guildID, AuthorID: authorID})
}

// PurgeMessages removes the chunks produced by specific messages,
// typically after the originals were deleted upstream.
func (uc *UseCases) PurgeMessages(ctx context.Context, guildID types.GuildID, messageIDs []types.MessageID) (int, error) {
	return uc.PurgeFiltered(ctx, model.PurgeFilter{GuildID: guildID, MessageIDs: messageIDs})
}

// PurgeOlderThan enforces a retention window on chat-origin chunks
func (uc *UseCases) PurgeOlderThan(ctx context.Context, guildID types.GuildID, retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return uc.PurgeFiltered(ctx, model.PurgeFilter{GuildID: guildID, Before: cutoff})
}
