package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/extract"
)

// FormResult holds the values collected by the extraction form.
type FormResult struct {
	PDFURL   string
	FilePath string
	Options  extract.Options
}

// ExtractForm is a huh-backed modal for configuring a new extraction.
type ExtractForm struct {
	form *huh.Form

	pdfURL   string
	filePath string
	by       string
	filter   bool
	minLen   string
	minFreq  string
	nonAlpha bool
}

// NewExtractForm builds the modal pre-filled with the given defaults.
// documents is the set of discovered local PDF paths offered as file
// suggestions.
func NewExtractForm(defaults extract.Options, documents []string) *ExtractForm {
	f := &ExtractForm{
		by:       string(defaults.By),
		filter:   defaults.FilterLowFrequencyWords,
		minLen:   strconv.Itoa(defaults.MinWordLength),
		minFreq:  strconv.FormatFloat(defaults.MinWordFrequency, 'f', -1, 64),
		nonAlpha: defaults.RemoveNonAlphabetic,
	}

	granularities := []huh.Option[string]{
		huh.NewOption("Blocks", string(document.ByBlocks)),
		huh.NewOption("Lines", string(document.ByLines)),
		huh.NewOption("Spans", string(document.BySpans)),
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("PDF URL").
				Description("Remote document to extract").
				Value(&f.pdfURL),
			huh.NewInput().
				Title("PDF file").
				Description("Local path, leave blank when using a URL").
				Suggestions(documents).
				Value(&f.filePath),
			huh.NewSelect[string]().
				Title("Granularity").
				Options(granularities...).
				Value(&f.by),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Filter low-frequency words").
				Value(&f.filter),
			huh.NewInput().
				Title("Min word length").
				Validate(validatePositiveInt).
				Value(&f.minLen),
			huh.NewInput().
				Title("Min word frequency").
				Validate(validateNonNegativeFloat).
				Value(&f.minFreq),
			huh.NewConfirm().
				Title("Remove non-alphabetic chunks").
				Value(&f.nonAlpha),
		),
	).WithShowHelp(false)

	return f
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

// Form exposes the underlying huh form for Init/Update/View wiring.
func (f *ExtractForm) Form() *huh.Form { return f.form }

// Completed reports whether the user submitted the form.
func (f *ExtractForm) Completed() bool { return f.form.State == huh.StateCompleted }

// Aborted reports whether the user cancelled the form.
func (f *ExtractForm) Aborted() bool { return f.form.State == huh.StateAborted }

// Result collects the submitted values. Invalid numbers were rejected by
// field validators, so conversion errors cannot occur here.
func (f *ExtractForm) Result() FormResult {
	minLen, _ := strconv.Atoi(strings.TrimSpace(f.minLen))
	minFreq, _ := strconv.ParseFloat(strings.TrimSpace(f.minFreq), 64)

	return FormResult{
		PDFURL:   strings.TrimSpace(f.pdfURL),
		FilePath: strings.TrimSpace(f.filePath),
		Options: extract.Options{
			By:                      document.Granularity(f.by),
			FilterLowFrequencyWords: f.filter,
			MinWordLength:           minLen,
			MinWordFrequency:        minFreq,
			RemoveNonAlphabetic:     f.nonAlpha,
		},
	}
}
