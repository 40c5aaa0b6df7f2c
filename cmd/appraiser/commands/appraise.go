package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newelco/appraiser/internal/config"
	"github.com/newelco/appraiser/internal/copywriter"
	"github.com/newelco/appraiser/internal/enrich"
	"github.com/newelco/appraiser/internal/export"
	"github.com/newelco/appraiser/internal/fetch"
	"github.com/newelco/appraiser/internal/imagestore"
	"github.com/newelco/appraiser/internal/llm"
	"github.com/newelco/appraiser/internal/logger"
	"github.com/newelco/appraiser/internal/output"
	"github.com/newelco/appraiser/internal/search"
	"github.com/newelco/appraiser/pkg/classify"
	"github.com/newelco/appraiser/pkg/listing"
)

// appraisalOutput is the serialized run plus optional generated copy.
type appraisalOutput struct {
	listing.AppraisalRun `yaml:",inline"`
	Copy                 *copyOutput `json:"copy,omitempty" yaml:"copy,omitempty"`
}

type copyOutput struct {
	AuctionTitle       string `json:"auction_title,omitempty" yaml:"auction_title,omitempty"`
	AuctionDescription string `json:"auction_description,omitempty" yaml:"auction_description,omitempty"`
	HouseTitle         string `json:"house_title,omitempty" yaml:"house_title,omitempty"`
	HouseDescription   string `json:"house_description,omitempty" yaml:"house_description,omitempty"`
	Keywords           string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

var appraiseCmd = &cobra.Command{
	Use:   "appraise",
	Short: "Appraise a furniture photo against live market comps",
	Long: `Run the full appraisal pipeline for one photo.

The image is uploaded to the configured image store (or taken from
--image-url as-is), reverse-image searched, and each match is classified and
enriched with scraped estimate ranges or asking prices.

Examples:
  # Appraise a local photo
  appraiser appraise -i commode.jpg

  # Classify unknown domains with the generative model
  appraiser appraise -i commode.jpg --classify ai

  # Deterministic only, no model calls at all
  appraiser appraise -i commode.jpg --ai=false`,
	RunE: runAppraise,
}

func init() {
	rootCmd.AddCommand(appraiseCmd)

	flags := appraiseCmd.Flags()

	// Image input
	flags.StringP("image", "i", "", "path to the item photo")
	flags.String("image-url", "", "already-hosted image URL (skips upload)")
	flags.String("sku", "", "SKU label for the run (default: image file name)")

	// Model settings
	flags.Bool("ai", true, "enable generative fallbacks (use --ai=false to disable)")
	flags.StringP("provider", "p", "", "LLM provider: openai, anthropic (default: failover chain from available keys)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.String("classify", "domain", "classification mode: domain, ai")

	// Scrape settings
	flags.Bool("no-scrape", false, "skip listing-page scraping entirely")
	flags.Int("max-scrape", 10, "max listing links to process per run")
	flags.Duration("timeout", 18*time.Second, "per-fetch timeout")
	flags.String("max-body-size", "600KB", "response body cap (e.g. 600KB, 1MB)")
	flags.Bool("la-login", false, "log in to LiveAuctioneers first (needs credentials in env/config)")

	// Output settings
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("export-sheet", false, "append the run to the configured Google Sheet")
	flags.Bool("generate-copy", false, "generate listing copy from the comps")

	_ = viper.BindPFlag("ai", flags.Lookup("ai"))
	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("max_scrape", flags.Lookup("max-scrape"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("max_body_size", flags.Lookup("max-body-size"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
}

func runAppraise(cmd *cobra.Command, _ []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logError("%v", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	imagePath, _ := cmd.Flags().GetString("image")
	imageURL, _ := cmd.Flags().GetString("image-url")
	if imagePath == "" && imageURL == "" {
		return fmt.Errorf("either --image or --image-url is required")
	}

	var client *llm.Client
	if cfg.AIEnabled {
		client, err = buildLLMClient(cfg)
		if err != nil {
			logger.Warn("generative features disabled", "error", err)
			client = nil
		}
	}

	// 1. Get the image somewhere the search provider can see it.
	if imageURL == "" {
		imageURL, err = uploadImage(ctx, cfg, imagePath)
		if err != nil {
			logError("image upload failed: %v", err)
			return err
		}
		logger.Info("image stored", "url", imageURL)
	}

	// 2. Reverse-image search.
	matches, err := search.NewClient(cfg.SerpAPIKey).VisualMatches(ctx, imageURL)
	if err != nil {
		logError("reverse-image search failed: %v", err)
		return err
	}
	logger.Info("search complete", "matches", len(matches))

	// 3. Classification. Domain suffixes are authoritative and stamped first;
	// the generative batch pass then upgrades whatever they left as "other".
	classify.AssignDefaults(matches)
	if mode, _ := cmd.Flags().GetString("classify"); mode == "ai" && client != nil {
		bc := enrich.NewBatchClassifier(client, func(msg string) {
			fmt.Fprintln(os.Stderr, "Warning: "+msg)
		})
		updates := bc.ClassifyAndExtract(ctx, matches)
		for i := range matches {
			matches[i].Apply(updates[i])
		}
	}

	sku, _ := cmd.Flags().GetString("sku")
	if sku == "" && imagePath != "" {
		sku = filepath.Base(imagePath)
	}
	run := &listing.AppraisalRun{
		Timestamp: time.Now(),
		SKULabel:  sku,
		ImageURL:  imageURL,
		Listings:  matches,
	}

	// 4. Enrichment.
	if noScrape, _ := cmd.Flags().GetBool("no-scrape"); noScrape {
		run.Normalize()
	} else {
		enricher, err := buildEnricher(ctx, cmd, cfg, client)
		if err != nil {
			logError("%v", err)
			return err
		}
		enricher.EnrichRun(ctx, run, cfg.MaxScrape)
	}

	result := appraisalOutput{AppraisalRun: *run}

	// 5. Optional listing copy.
	if genCopy, _ := cmd.Flags().GetBool("generate-copy"); genCopy {
		if client == nil {
			logger.Warn("skipping copy generation: no generative provider available")
		} else {
			result.Copy = generateCopy(ctx, copywriter.New(client), run)
		}
	}

	// 6. Emit the run.
	if err := writeResult(cfg, &result); err != nil {
		logError("writing output: %v", err)
		return err
	}

	// 7. Optional spreadsheet append.
	if exportSheet, _ := cmd.Flags().GetBool("export-sheet"); exportSheet {
		sheets := export.NewSheetsClient(cfg.GoogleSheetID, cfg.GoogleSheetsToken)
		if err := sheets.ExportRun(ctx, run); err != nil {
			logError("sheet export failed: %v", err)
			return err
		}
		logger.Info("run appended to sheet", "sheet", cfg.GoogleSheetID)
	}

	return nil
}

// buildLLMClient assembles the provider or failover chain from configured
// keys.
func buildLLMClient(cfg *config.Config) (*llm.Client, error) {
	switch cfg.Provider {
	case "openai":
		p, err := llm.NewOpenAIProvider(llm.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		return llm.NewClient(p), nil
	case "anthropic":
		p, err := llm.NewAnthropicProvider(llm.Config{APIKey: cfg.AnthropicAPIKey, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		return llm.NewClient(p), nil
	}

	var providers []llm.Provider
	if cfg.OpenAIAPIKey != "" {
		if p, err := llm.NewOpenAIProvider(llm.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.Model}); err == nil {
			providers = append(providers, p)
		}
	}
	if cfg.AnthropicAPIKey != "" {
		if p, err := llm.NewAnthropicProvider(llm.Config{APIKey: cfg.AnthropicAPIKey, Model: cfg.Model}); err == nil {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		return nil, llm.ErrNoProviderAvailable
	}
	return llm.NewClient(llm.NewChain(providers...)), nil
}

func uploadImage(ctx context.Context, cfg *config.Config, path string) (string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads a user-specified photo
	if err != nil {
		return "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	store := imagestore.NewHTTPStore(cfg.ImageUploadURL, cfg.ImagePublicURL)
	return store.Store(ctx, data, contentType, filepath.Base(path))
}

func buildEnricher(ctx context.Context, cmd *cobra.Command, cfg *config.Config, client *llm.Client) (*enrich.Enricher, error) {
	fetchCfg := fetch.DefaultConfig()
	fetchCfg.Timeout = cfg.Timeout
	fetchCfg.MaxBody = cfg.MaxBodyBytes()
	if cfg.UserAgent != "" {
		fetchCfg.UserAgent = cfg.UserAgent
	}

	useLogin, _ := cmd.Flags().GetBool("la-login")
	if useLogin {
		if !cfg.HasLiveAuctioneersLogin() {
			return nil, fmt.Errorf("--la-login requires LIVEAUCTIONEERS_USERNAME and LIVEAUCTIONEERS_PASSWORD")
		}
		fetchCfg.Username = cfg.LiveAuctioneersUsername
		fetchCfg.Password = cfg.LiveAuctioneersPassword
	}

	fetcher := fetch.New(fetchCfg)
	if useLogin {
		if fetcher.TryLogin(ctx) {
			logger.Info("authenticated auction-house session established")
		} else {
			logger.Warn("auction-house login failed, continuing anonymously")
		}
	}

	opts := []enrich.Option{}
	if client != nil {
		opts = append(opts, enrich.WithAI(enrich.NewExtractor(client)))
	}
	return enrich.New(fetcher, opts...), nil
}

// generateCopy runs every copywriter surface, logging rather than failing:
// copy is a convenience layered on an already-complete appraisal.
func generateCopy(ctx context.Context, w *copywriter.Writer, run *listing.AppraisalRun) *copyOutput {
	out := &copyOutput{}
	steps := []struct {
		name string
		dest *string
		gen  func(context.Context, *listing.AppraisalRun) (string, error)
	}{
		{"auction title", &out.AuctionTitle, w.AuctionTitle},
		{"auction description", &out.AuctionDescription, w.AuctionDescription},
		{"house title", &out.HouseTitle, w.HouseTitle},
		{"house description", &out.HouseDescription, w.HouseDescription},
		{"keywords", &out.Keywords, w.Keywords},
	}
	for _, step := range steps {
		text, err := step.gen(ctx, run)
		if err != nil {
			logger.Warn("copy generation failed", "surface", step.name, "error", err)
			continue
		}
		*step.dest = text
	}
	return out
}

func writeResult(cfg *config.Config, result *appraisalOutput) error {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	dest := os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output) //#nosec G304 -- CLI tool writes to a user-specified output file
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		dest = f
	}

	writer, err := output.NewWriter(dest, format)
	if err != nil {
		return err
	}

	if format == output.FormatJSONL {
		for _, l := range result.Listings {
			if err := writer.Write(l); err != nil {
				return err
			}
		}
	} else if err := writer.Write(result); err != nil {
		return err
	}
	return writer.Close()
}
