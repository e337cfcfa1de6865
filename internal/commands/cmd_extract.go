package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/pkg/iojson"
)

const extractTableMinTextWidth = 20

type ExtractCmd struct {
	flags *Flags

	// flags
	pdfURL     string
	pdfFile    string
	by         string
	jsonOutput bool
}

// NewExtractCmd creates a new extract command
func NewExtractCmd(flags *Flags) *ExtractCmd {
	return &ExtractCmd{flags: flags}
}

// Register adds the extract command to the application
func (cmd *ExtractCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "extract",
		Usage:     "Extract a PDF transcript to stdout",
		UsageText: "pagemark extract [--url URL | --file PATH] [--by granularity] [--json]",
		Description: `Sends the document to the extraction backend and prints the text chunks.

Use --json for line-delimited JSON output with the pixel geometry of each chunk.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "PDF URL to extract",
				Destination: &cmd.pdfURL,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "local PDF file to extract",
				Destination: &cmd.pdfFile,
			},
			&cli.StringFlag{
				Name:        "by",
				Usage:       "extraction granularity (spans, lines, blocks)",
				Destination: &cmd.by,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines with chunk geometry",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type chunkLine struct {
	document.TextChunk
	Top float64 `json:"px_top"`
}

func (cmd *ExtractCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cmd.by != "" {
		g := document.Granularity(cmd.by)
		if !g.IsValid() {
			return fmt.Errorf("unknown granularity %q", cmd.by)
		}
		cfg.Extraction.By = g
	}

	slot := &extract.SourceSlot{}
	defer slot.Close()

	req, err := buildRequest(cfg, cmd.pdfURL, cmd.pdfFile, slot)
	if err != nil {
		if cmd.jsonOutput {
			return iojson.WriteError(err.Error(), nil)
		}
		return err
	}

	client := extract.NewClient(cfg.Backend.URL, cfg.Backend.Timeout())
	result, err := client.Extract(ctx, *req)
	if err != nil {
		if cmd.jsonOutput {
			return iojson.WriteError(fmt.Sprintf("extract: %s", err), map[string]any{"backend": cfg.Backend.URL})
		}
		return fmt.Errorf("extract: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		return cmd.writeJSON(out, result)
	}

	if len(result.Chunks) == 0 {
		fmt.Fprintf(os.Stderr, "No text extracted\n")
		return nil
	}

	textWidth := extractTableMinTextWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		textWidth = w - 20
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PAGE\tLEFT\tTOP\tTEXT")
	for _, chunk := range result.Chunks {
		_, _ = fmt.Fprintf(tw, "%d\t%.0f\t%.0f\t%s\n",
			chunk.PageNumber, chunk.PxLeft, chunkTop(chunk), truncate(chunk.Text, textWidth))
	}
	_ = tw.Flush()

	fmt.Fprintf(os.Stderr, "%d chunks across %d pages in %.1fs\n",
		len(result.Chunks), len(result.Pages), result.RunTime.Seconds())
	return nil
}

func (cmd *ExtractCmd) writeJSON(out io.Writer, result *extract.Result) error {
	for _, chunk := range result.Chunks {
		line := chunkLine{TextChunk: chunk, Top: chunkTop(chunk)}
		if err := iojson.WriteLine(out, line); err != nil {
			return fmt.Errorf("encode chunk: %w", err)
		}
	}
	return nil
}

func chunkTop(chunk document.TextChunk) float64 {
	rect, err := geometry.ChunkRect(chunk)
	if err != nil {
		return 0
	}
	return rect.Top
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
