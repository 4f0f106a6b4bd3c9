package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/cpunion/slidegen/pkg/site"
	"github.com/cpunion/slidegen/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview <deck dir>",
	Short: "Render a generated deck in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slides, err := site.ReadSlides(args[0])
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return err
		}
		out, err := r.Render(slidesMarkdown(slides))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

// slidesMarkdown joins slides into one markdown document separated by rules.
func slidesMarkdown(slides []types.Slide) string {
	var sb strings.Builder
	for i, s := range slides {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&sb, "## %d. %s\n\n", s.Metadata.Order, s.Title)
		sb.WriteString(s.Content)
		if s.Metadata.Notes != "" {
			fmt.Fprintf(&sb, "\n\n*Notes: %s*", s.Metadata.Notes)
		}
	}
	return sb.String()
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().Int("width", 80, "Word wrap width")
}
