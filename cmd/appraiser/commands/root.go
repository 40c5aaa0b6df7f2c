// Package commands implements the CLI commands for the appraiser.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "appraiser",
	Short: "Furniture appraisal comps from a single photo",
	Long: `Appraiser turns a photo of a furniture piece into comparable listings.

It uploads the image, runs a reverse-image search, classifies each match as
an auction or retail comp, scrapes estimate ranges and asking prices from the
listing pages, and emits the appraised run as JSON, JSONL, or YAML. Runs can
also be appended to a Google Sheets workbook and turned into listing copy.

Examples:
  # Appraise a photo and print the run as JSON
  appraiser appraise -i photo.jpg

  # Skip the upload step when the image is already hosted
  appraiser appraise --image-url "https://cdn.example.com/photo.jpg"

  # Tight scrape budget, YAML output, append to the comps sheet
  appraiser appraise -i photo.jpg --max-scrape 5 --format yaml --export-sheet`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.appraiser.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON instead of text")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".appraiser")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("APPRAISER")
	viper.AutomaticEnv()

	// Secrets come from their conventional env vars too.
	_ = viper.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("serpapi_api_key", "SERPAPI_API_KEY")
	_ = viper.BindEnv("liveauctioneers_username", "LIVEAUCTIONEERS_USERNAME")
	_ = viper.BindEnv("liveauctioneers_password", "LIVEAUCTIONEERS_PASSWORD")
	_ = viper.BindEnv("google_sheet_id", "GOOGLE_SHEET_ID")
	_ = viper.BindEnv("google_sheets_token", "GOOGLE_SHEETS_TOKEN")

	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
