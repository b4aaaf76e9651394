package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/competitors"
	"github.com/matthewjhunter/copysmith/internal/notify"
	"github.com/matthewjhunter/copysmith/internal/output"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

var (
	configPath   string
	cfg          *storage.Config
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "copysmith",
		Short: "AI-assisted SEO keyword, metadata, and social content generator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, text, human (default: json)")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	loaded, err := storage.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func newEngine() (*copysmith.Engine, error) {
	engine, err := copysmith.NewEngine(engineConfig())
	if err != nil {
		return nil, err
	}
	if cfg.Embeddings.BaseURL != "" && cfg.Embeddings.Model != "" {
		// Related-history lookup is best effort; the engine works without it.
		if err := engine.UseEmbedder(cfg.Embeddings.BaseURL, cfg.Embeddings.Model); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: embeddings unavailable: %v\n", err)
		}
	}
	return engine, nil
}

func engineConfig() copysmith.EngineConfig {
	return copysmith.EngineConfig{
		DBPath:        cfg.Database.Path,
		Provider:      cfg.Generator.Provider,
		Model:         cfg.Generator.Model,
		Language:      cfg.Generator.Language,
		Temperature:   cfg.Generator.Temperature,
		GeminiBaseURL: cfg.Gemini.BaseURL,
		GeminiKeyEnv:  cfg.Gemini.APIKeyEnv,
		OllamaBaseURL: cfg.Ollama.BaseURL,
		AdminsPath:    cfg.Admin.CredentialsPath,
		Limits: copysmith.Limits{
			Description:   cfg.Limits.Description,
			PageContent:   cfg.Limits.PageContent,
			Competitors:   cfg.Limits.Competitors,
			AnalysisText:  cfg.Limits.AnalysisText,
			TargetKeyword: cfg.Limits.TargetKeyword,
			AttachmentMB:  cfg.Limits.AttachmentMB,
		},
	}
}

func formatter() *output.Formatter {
	return output.NewFormatter(output.Format(outputFormat))
}

// resolveCompetitors merges the free-text competitors flag with competitor
// feeds imported over the network.
func resolveCompetitors(ctx context.Context, freeText string, feedURLs []string) (string, error) {
	if len(feedURLs) == 0 {
		return freeText, nil
	}
	imported, err := competitors.NewImporter().FromFeeds(ctx, feedURLs)
	if err != nil {
		return "", err
	}
	if freeText == "" {
		return imported, nil
	}
	return freeText + "\n" + imported, nil
}

func readAttachment(path string) (*copysmith.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	mime := "image/jpeg"
	switch {
	case strings.HasSuffix(path, ".png"):
		mime = "image/png"
	case strings.HasSuffix(path, ".gif"):
		mime = "image/gif"
	case strings.HasSuffix(path, ".webp"):
		mime = "image/webp"
	case strings.HasSuffix(path, ".mp4"):
		mime = "video/mp4"
	}
	return copysmith.NewAttachment(mime, data), nil
}

func generateCmd() *cobra.Command {
	var (
		language    string
		competitors string
		feedURLs    []string
		pageContent bool
		category    string
		attachPath  string
		lat, lng    float64
		analysis    string
		keywordsCSV bool
	)

	cmd := &cobra.Command{
		Use:   "generate <platform> <input>",
		Short: "Generate assets: seo, brief, maps, youtube, linkedin, instagram, facebook",
		Args:  cobra.ExactArgs(2),
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "output language (default: from config)")
	cmd.Flags().StringVar(&competitors, "competitors", "", "competitor names/URLs, one per line")
	cmd.Flags().StringSliceVar(&feedURLs, "competitor-feed", nil, "competitor RSS/Atom feed URL (repeatable)")
	cmd.Flags().BoolVar(&pageContent, "page-content", false, "treat input as full page content instead of a description")
	cmd.Flags().StringVar(&category, "category", "", "YouTube category to tailor suggestions to")
	cmd.Flags().StringVar(&attachPath, "attachment", "", "path to an image/video to analyze")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude for maps generation")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude for maps generation")
	cmd.Flags().StringVar(&analysis, "density-text", "", "text to compute keyword density against")
	cmd.Flags().BoolVar(&keywordsCSV, "keywords-csv", false, "write seo/maps keywords as CSV instead of the formatter output")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		platform, input := args[0], args[1]
		ctx := cmd.Context()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		merged, err := resolveCompetitors(ctx, competitors, feedURLs)
		if err != nil {
			return err
		}
		attachment, err := readAttachment(attachPath)
		if err != nil {
			return err
		}

		opts := copysmith.GenerateOptions{
			Language:    language,
			Competitors: merged,
			PageContent: pageContent,
			Category:    category,
			Attachment:  attachment,
		}
		f := formatter()

		switch platform {
		case "seo":
			bundles, err := engine.GenerateSeoBundle(ctx, input, opts)
			if err != nil {
				return err
			}
			if analysis != "" {
				for i := range bundles {
					bundles[i].Keywords, err = engine.AnnotateDensity(analysis, bundles[i].Keywords)
					if err != nil {
						return err
					}
				}
			}
			if keywordsCSV {
				var keywords []copysmith.KeywordSuggestion
				for _, b := range bundles {
					keywords = append(keywords, b.Keywords...)
				}
				return output.WriteKeywordsCSV(os.Stdout, keywords)
			}
			return f.OutputSeoBundles(bundles)
		case "brief":
			brief, err := engine.GenerateContentBrief(ctx, input, opts)
			if err != nil {
				return err
			}
			return f.OutputBrief(brief)
		case "maps":
			if lat == 0 && lng == 0 {
				return fmt.Errorf("maps generation requires --lat and --lng")
			}
			result, err := engine.GenerateMapsKeywords(ctx, input, copysmith.LatLng{Latitude: lat, Longitude: lng}, opts)
			if err != nil {
				return err
			}
			if keywordsCSV {
				return output.WriteKeywordsCSV(os.Stdout, result.Keywords)
			}
			return f.OutputMapsResult(result)
		case "youtube":
			content, err := engine.GenerateYouTube(ctx, input, opts)
			if err != nil {
				return err
			}
			return f.OutputYouTube(content)
		case "linkedin":
			content, err := engine.GenerateLinkedIn(ctx, input, opts)
			if err != nil {
				return err
			}
			return f.OutputSocial(content)
		case "instagram":
			content, err := engine.GenerateInstagram(ctx, input, opts)
			if err != nil {
				return err
			}
			return f.OutputSocial(content)
		case "facebook":
			content, err := engine.GenerateFacebook(ctx, input, opts)
			if err != nil {
				return err
			}
			return f.OutputSocial(content)
		}
		return fmt.Errorf("unknown platform %q", platform)
	}

	return cmd
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage the content calendar",
	}
	cmd.AddCommand(calendarAddCmd())
	cmd.AddCommand(calendarUpdateCmd())
	cmd.AddCommand(calendarDeleteCmd())
	cmd.AddCommand(calendarListCmd())
	cmd.AddCommand(calendarDueCmd())
	return cmd
}

func calendarAddCmd() *cobra.Command {
	var (
		content  string
		platform string
		when     string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Schedule a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := time.Parse(time.RFC3339, when)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}

			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			post, err := engine.SchedulePost(copysmith.ScheduledPost{
				Title:       args[0],
				Content:     content,
				Platform:    platform,
				ScheduledAt: at,
				Notes:       notes,
			})
			if err != nil {
				return err
			}
			return formatter().OutputCalendar([]copysmith.ScheduledPost{*post})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "prepared post content")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform")
	cmd.Flags().StringVar(&when, "at", "", "scheduled time (RFC 3339)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.MarkFlagRequired("at")
	return cmd
}

func calendarUpdateCmd() *cobra.Command {
	var (
		title    string
		content  string
		platform string
		when     string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a scheduled post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch copysmith.PostPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("platform") {
				patch.Platform = &platform
			}
			if cmd.Flags().Changed("notes") {
				patch.Notes = &notes
			}
			if cmd.Flags().Changed("at") {
				at, err := time.Parse(time.RFC3339, when)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				patch.ScheduledAt = &at
			}

			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			return engine.Reschedule(args[0], patch)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&platform, "platform", "", "new platform")
	cmd.Flags().StringVar(&when, "at", "", "new scheduled time (RFC 3339)")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	return cmd
}

func calendarDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a scheduled post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()
			return engine.UnschedulePost(args[0])
		},
	}
}

func calendarListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled posts in chronological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			posts, err := engine.ScheduledPosts()
			if err != nil {
				return err
			}
			return formatter().OutputCalendar(posts)
		},
	}
}

func calendarDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Show reminders for posts whose scheduled time has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			now := time.Now()
			due, err := engine.DuePosts(now)
			if err != nil {
				return err
			}
			return notify.NewNotifier(true, os.Stdout).NotifyDuePosts(due, now)
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect generation history",
	}
	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyClearCmd())
	cmd.AddCommand(historySimilarCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List generations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			items, err := engine.History()
			if err != nil {
				return err
			}
			return formatter().OutputHistory(items)
		},
	}
}

func historyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all generation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()
			return engine.ClearHistory()
		},
	}
}

func historySimilarCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar <query>",
		Short: "Find past generations with inputs similar to the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			items, err := engine.RelatedHistory(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return formatter().OutputHistory(items)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum results")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history for spreadsheets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "history-csv",
		Short: "Write history as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			items, err := engine.History()
			if err != nil {
				return err
			}
			return output.WriteHistoryCSV(os.Stdout, items)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "history-table",
		Short: "Write history as an HTML table to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			items, err := engine.History()
			if err != nil {
				return err
			}
			return output.WriteHistoryTable(os.Stdout, items)
		},
	})
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage device access keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "issue <device-id>",
		Short: "Issue a fresh access key for a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			key, err := engine.IssueKeyForDevice(args[0])
			if err != nil {
				return err
			}
			fmt.Println(key)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "issue-custom <device-id> <key>",
		Short: "Store a caller-chosen access key for a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			fmt.Fprintln(os.Stderr, "Warning: custom keys skip strength checks; prefer 'admin issue'")
			return engine.IssueCustomKeyForDevice(args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <device-id>",
		Short: "Revoke a device's access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()
			return engine.RevokeAccessForDevice(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cycle",
		Short: "Cycle the master secret, invalidating every issued key",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()
			return engine.CycleMasterSecret()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List devices with access",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()
			return formatter().OutputManagedUsers(engine.ManagedUsers())
		},
	})
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a default config file to the --config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config already exists at %s", configPath)
			}
			return storage.WriteDefaultConfig(configPath)
		},
	}
}
