package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pagemark/pagemark/internal/core/docfind"
)

type DocsCmd struct {
	flags *Flags
}

// NewDocsCmd creates a new docs command
func NewDocsCmd(flags *Flags) *DocsCmd {
	return &DocsCmd{flags: flags}
}

// Register adds the docs command to the application
func (cmd *DocsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "docs",
		Usage:       "List local documents matching the configured patterns",
		UsageText:   "pagemark docs",
		Description: `Walks the current directory and prints the files the document picker would offer.`,
		Action:      cmd.run,
	})

	return app
}

func (cmd *DocsCmd) run(ctx context.Context, c *cli.Command) error {
	documents, err := docfind.Discover(".", cmd.flags.Config.Documents.Patterns)
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Fprintf(os.Stderr, "No documents found\n")
		return nil
	}

	out := c.Root().Writer
	for _, doc := range documents {
		_, _ = fmt.Fprintln(out, doc)
	}
	return nil
}
