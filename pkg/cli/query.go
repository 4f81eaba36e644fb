package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/cli/config"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/usecase"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/safe"
)

func cmdQuery() *cli.Command {
	var storeCfg config.Store
	var embeddingCfg config.Embedding
	var llmCfg config.LLM
	var budgetCfg config.Budget
	var personaCfg config.Persona
	var guildID, channelID int

	flags := joinFlags(
		storeCfg.Flags(),
		embeddingCfg.Flags(),
		llmCfg.Flags(),
		budgetCfg.Flags(),
		personaCfg.Flags(),
		[]cli.Flag{
			&cli.IntFlag{
				Name:        "guild",
				Usage:       "Restrict retrieval to one guild",
				Destination: &guildID,
			},
			&cli.IntFlag{
				Name:        "channel",
				Usage:       "Restrict retrieval to one channel",
				Destination: &channelID,
			},
		},
	)

	return &cli.Command{
		Name:      "query",
		Usage:     "Ask a question against indexed memory",
		ArgsUsage: "<prompt...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if prompt == "" {
				return goerr.New("a prompt is required")
			}

			store, err := storeCfg.Configure()
			if err != nil {
				return err
			}
			embedder, err := embeddingCfg.Configure()
			if err != nil {
				return err
			}
			generator, err := llmCfg.Configure()
			if err != nil {
				return err
			}
			persona, err := personaCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(store, embedder, generator)

			retrieval := budgetCfg.Retrieval()
			retrieval.Filter.GuildID = types.GuildID(guildID)
			retrieval.Filter.ChannelID = types.ChannelID(channelID)

			out, err := uc.Query(ctx, &usecase.QueryInput{
				Prompt:    prompt,
				Persona:   persona,
				Retrieval: retrieval,
				Budget:    budgetCfg.Budget(),
			})
			if err != nil {
				return err
			}

			safe.Write(ctx, os.Stdout, []byte(out.Answer+"\n"))
			if len(out.Citations) > 0 {
				fmt.Println()
				color.New(color.Faint).Println("Sources:")
				for _, citation := range out.Citations {
					color.New(color.Faint).Println("  " + citation)
				}
			}
			return nil
		},
	}
}
