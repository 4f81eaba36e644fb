package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/cli/config"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/usecase"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/safe"
)

func cmdPurge() *cli.Command {
	var storeCfg config.Store
	var guildID, channelID, authorID int
	var messageIDs []int
	var olderThan time.Duration

	return &cli.Command{
		Name:  "purge",
		Usage: "Delete indexed chunks matching a filter",
		Flags: append(storeCfg.Flags(),
			&cli.IntFlag{Name: "guild", Usage: "Guild scope", Destination: &guildID},
			&cli.IntFlag{Name: "channel", Usage: "Channel scope", Destination: &channelID},
			&cli.IntFlag{Name: "author", Usage: "Author to purge", Destination: &authorID},
			&cli.IntSliceFlag{Name: "message-id", Usage: "Message IDs to purge (repeatable)", Destination: &messageIDs},
			&cli.DurationFlag{Name: "older-than", Usage: "Purge chunks created before this age (e.g. 720h)", Destination: &olderThan},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.Configure()
			if err != nil {
				return err
			}

			filter := model.PurgeFilter{
				GuildID:   types.GuildID(guildID),
				ChannelID: types.ChannelID(channelID),
				AuthorID:  types.AuthorID(authorID),
			}
			for _, id := range messageIDs {
				filter.MessageIDs = append(filter.MessageIDs, types.MessageID(id))
			}
			if olderThan > 0 {
				filter.Before = time.Now().UTC().Add(-olderThan)
			}
			if filter.IsZero() {
				return goerr.New("at least one filter flag is required")
			}

			uc := usecase.New(store, nil, nil)
			deleted, err := uc.PurgeFiltered(ctx, filter)
			if err != nil {
				return err
			}
			color.Green("deleted %d chunks", deleted)
			return nil
		},
	}
}

func cmdExport() *cli.Command {
	var storeCfg config.Store
	var guildID, channelID, authorID int
	var output string

	return &cli.Command{
		Name:  "export",
		Usage: "Export indexed chunks as JSON lines",
		Flags: append(storeCfg.Flags(),
			&cli.IntFlag{Name: "guild", Usage: "Guild scope", Destination: &guildID},
			&cli.IntFlag{Name: "channel", Usage: "Channel scope", Destination: &channelID},
			&cli.IntFlag{Name: "author", Usage: "Author scope", Destination: &authorID},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path ('-' for stdout)", Value: "-", Destination: &output},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.Configure()
			if err != nil {
				return err
			}

			w := os.Stdout
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
				}
				defer safe.Close(ctx, f)
				w = f
			}

			uc := usecase.New(store, nil, nil)
			written, err := uc.Export(ctx, w, model.SearchFilter{
				GuildID:   types.GuildID(guildID),
				ChannelID: types.ChannelID(channelID),
				AuthorID:  types.AuthorID(authorID),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "exported %d chunks\n", written)
			return nil
		},
	}
}

func cmdStats() *cli.Command {
	var storeCfg config.Store
	var embeddingCfg config.Embedding

	return &cli.Command{
		Name:  "stats",
		Usage: "Show index statistics",
		Flags: joinFlags(storeCfg.Flags(), embeddingCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.Configure()
			if err != nil {
				return err
			}
			embedder, err := embeddingCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(store, embedder, nil)
			stats, err := uc.Stats(ctx)
			if err != nil {
				return err
			}

			color.New(color.Bold).Println("Index statistics")
			fmt.Printf("  chunks:    %d\n", stats.TotalChunks)
			fmt.Printf("  dimension: %d\n", stats.EmbeddingDimension)
			if len(stats.Snapshots) > 0 {
				fmt.Println("  snapshots:")
				for _, s := range stats.Snapshots {
					fmt.Printf("    %s (%d bytes, %s)\n", s.Name, s.SizeBytes, s.CreatedAt.Format(time.RFC3339))
				}
			}
			return nil
		},
	}
}

func cmdHealth() *cli.Command {
	var storeCfg config.Store
	var embeddingCfg config.Embedding

	return &cli.Command{
		Name:  "health",
		Usage: "Check that the store and embedding backends answer",
		Flags: joinFlags(storeCfg.Flags(), embeddingCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.Configure()
			if err != nil {
				return err
			}
			embedder, err := embeddingCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(store, embedder, nil)
			if err := uc.Health(ctx); err != nil {
				color.Red("unhealthy: %v", err)
				return err
			}
			color.Green("ok")
			return nil
		},
	}
}

func cmdSnapshot() *cli.Command {
	var storeCfg config.Store

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Create a server-side snapshot of the collection",
		Flags: storeCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(store, nil, nil)
			info, err := uc.Snapshot(ctx)
			if err != nil {
				return err
			}
			color.Green("snapshot created: %s (%d bytes)", info.Name, info.SizeBytes)
			return nil
		},
	}
}
