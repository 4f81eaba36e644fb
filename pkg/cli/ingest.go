package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/cli/config"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/usecase"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/safe"
)

func cmdIngest() *cli.Command {
	var storeCfg config.Store
	var embeddingCfg config.Embedding
	var budgetCfg config.Budget
	var input string

	flags := joinFlags(storeCfg.Flags(), embeddingCfg.Flags(), budgetCfg.Flags())

	newUseCases := func() (*usecase.UseCases, error) {
		store, err := storeCfg.Configure()
		if err != nil {
			return nil, err
		}
		embedder, err := embeddingCfg.Configure()
		if err != nil {
			return nil, err
		}
		return usecase.New(store, embedder, nil), nil
	}

	return &cli.Command{
		Name:  "ingest",
		Usage: "Index content into the vector store",
		Commands: []*cli.Command{
			{
				Name:  "messages",
				Usage: "Ingest chat messages from a JSONL file (one message per line, '-' for stdin)",
				Flags: append(flags, &cli.StringFlag{
					Name:        "input",
					Aliases:     []string{"i"},
					Usage:       "Input path or '-' for stdin",
					Value:       "-",
					Destination: &input,
				}),
				Action: func(ctx context.Context, c *cli.Command) error {
					uc, err := newUseCases()
					if err != nil {
						return err
					}
					messages, err := readMessages(input)
					if err != nil {
						return err
					}
					report, err := uc.IngestMessages(ctx, messages, budgetCfg.Chunking())
					if err != nil {
						return err
					}
					printReport(report)
					return nil
				},
			},
			{
				Name:      "url",
				Usage:     "Fetch a web page and index its article text",
				ArgsUsage: "<url>",
				Flags:     flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("exactly one URL is required")
					}
					uc, err := newUseCases()
					if err != nil {
						return err
					}
					report, err := uc.IngestURL(ctx, c.Args().First(), budgetCfg.Chunking())
					if err != nil {
						return err
					}
					printReport(report)
					return nil
				},
			},
			{
				Name:      "file",
				Usage:     "Index a plain-text or markdown file",
				ArgsUsage: "<path>",
				Flags:     flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("exactly one file path is required")
					}
					uc, err := newUseCases()
					if err != nil {
						return err
					}
					report, err := uc.IngestFile(ctx, c.Args().First(), budgetCfg.Chunking())
					if err != nil {
						return err
					}
					printReport(report)
					return nil
				},
			},
		},
	}
}

func readMessages(input string) ([]model.ChatMessage, error) {
	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open input", goerr.V("path", input))
		}
		defer safe.Close(context.Background(), f)
		r = f
	}

	var messages []model.ChatMessage
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var msg model.ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, goerr.Wrap(err, "failed to parse message", goerr.V("line", line))
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read input")
	}
	return messages, nil
}

func printReport(report *model.IngestReport) {
	color.New(color.Bold).Println("Ingestion report")
	color.Green("  added:   %d", report.Added)
	color.Cyan("  merged:  %d", report.Merged)
	color.Yellow("  skipped: %d", report.Skipped)
	if failed := report.Failed(); len(failed) > 0 {
		color.Red("  failed:  %d", len(failed))
		for _, item := range failed {
			color.Red("    %s (message %d): %v", item.Source, item.MessageID, item.Err)
		}
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}
