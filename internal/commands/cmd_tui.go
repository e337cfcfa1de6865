package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/pagemark/pagemark/internal/core/docfind"
	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/tui"
)

type TuiCmd struct {
	flags *Flags

	// flags
	pdfURL  string
	pdfFile string
	pick    bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Usage:       "PDF URL to extract on startup",
			Destination: &cmd.pdfURL,
		},
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "local PDF file to extract on startup",
			Destination: &cmd.pdfFile,
		},
		&cli.BoolFlag{
			Name:        "pick",
			Usage:       "open the extraction form with discovered local documents",
			Destination: &cmd.pick,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	documents, err := docfind.Discover(".", cfg.Documents.Patterns)
	if err != nil {
		log.Warn().Err(err).Msg("document discovery failed")
	}

	slot := &extract.SourceSlot{}
	defer slot.Close()

	var initial *extract.Request
	if cmd.pdfURL != "" || cmd.pdfFile != "" {
		initial, err = buildRequest(cfg, cmd.pdfURL, cmd.pdfFile, slot)
		if err != nil {
			return err
		}
	}

	client := extract.NewClient(cfg.Backend.URL, cfg.Backend.Timeout())
	model := tui.NewModel(cfg, client, slot, documents, initial)
	if cmd.pick && initial == nil {
		model.OpenFormOnStart()
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
