package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cpunion/slidegen/pkg/app"
	"github.com/cpunion/slidegen/pkg/site"
	"github.com/cpunion/slidegen/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck and write it to the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		req := types.SlideGenerationRequest{}
		req.Topic, _ = flags.GetString("topic")
		req.SlideCount, _ = flags.GetInt("slides")
		tone, _ := flags.GetString("tone")
		req.Tone = types.Tone(tone)
		req.Audience, _ = flags.GetString("audience")
		req.IncludeImages, _ = flags.GetBool("images")
		req.ThemePreference, _ = flags.GetString("theme")
		req.DurationMinutes, _ = flags.GetInt("duration")
		out, _ := flags.GetString("out")
		if out == "" {
			out = cfg.OutputDir
		}
		showProgress, _ := flags.GetBool("progress")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		var progress func(phase string, percent int, message string)
		if showProgress {
			progress = func(phase string, percent int, message string) {
				fmt.Fprintf(os.Stderr, "[%3d%%] %-16s %s\n", percent, phase, message)
			}
		}

		result, err := a.Pipeline.GenerateWithProgress(ctx, req, progress)
		if err != nil {
			return err
		}

		dir := filepath.Join(out, site.DeckDirName(result))
		manifest, err := site.WriteDeck(dir, result)
		if err != nil {
			return fmt.Errorf("write deck: %w", err)
		}
		if _, err := site.WriteDeckCatalog(out); err != nil {
			logger.Warn().Err(err).Str("root", out).Msg("update deck catalog")
		}

		for _, w := range result.Metadata.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		usage := a.Client.Usage()
		fmt.Printf("%s: %d slides, theme %s, %d min\n", manifest.Title, manifest.Stats.SlideCount, manifest.Theme, manifest.Stats.DurationMinutes)
		fmt.Printf("model %s: %d calls, %d tokens\n", result.Metadata.Model, usage.Calls, usage.TotalTokens)
		fmt.Println(filepath.Join(dir, site.HTMLFile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	f := generateCmd.Flags()
	f.StringP("topic", "t", "", "Presentation topic (required)")
	f.IntP("slides", "n", 0, "Number of content slides, excluding title and closing (0 = model's choice)")
	f.String("tone", "formal", "Tone: formal, casual or technical")
	f.String("audience", "", "Intended audience")
	f.Bool("images", false, "Attach images to slides that benefit from visuals")
	f.String("theme", "", "Theme name or id (overrides the tone's default)")
	f.Int("duration", 0, "Target talk length in minutes; rescales the outline (0 = no target)")
	f.StringP("out", "o", "", "Output root (default OUTPUT_DIR)")
	f.Bool("progress", true, "Print progress to stderr")
	_ = generateCmd.MarkFlagRequired("topic")
}
