package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/app"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
)

// transcriptExporter renders chats for the export command
type transcriptExporter interface {
	ChatToMarkdown(chat *models.Chat) string
	ChatToPDF(ctx context.Context, chat *models.Chat) ([]byte, error)
}

var (
	// Persistent flags
	configFiles  []string
	ownerFlag    string
	outputFormat string

	// Resolved state, populated by setupApp
	config          *common.Config
	logger          arbor.ILogger
	application     *app.App
	documentService interfaces.DocumentService
	chatService     interfaces.ChatService
	exportService   transcriptExporter
)

// skipAppAnnotation marks commands that run without storage or providers
const skipAppAnnotation = "docqa/skip-app"

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa ingests documents (txt, md, html, pdf, docx), embeds their chunks and
answers questions grounded in the most relevant chunks, keeping a chat history
per owner.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "Owner identity (overrides DOCQA_OWNER and config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
}

func main() {
	common.InstallCrashHandler(os.Getenv("DOCQA_CRASH_DIR"))
	defer common.RecoverWithCrashFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error().Err(err).Msg("Command failed")
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		os.Exit(1)
	}
}

// setupApp loads configuration, initializes logging and builds the
// application. Services injected beforehand are left in place.
func setupApp(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(); err != nil {
		return err
	}
	if cmd.Annotations[skipAppAnnotation] == "true" {
		return nil
	}
	if documentService != nil || chatService != nil {
		return nil
	}

	paths := configFiles
	if len(paths) == 0 {
		if _, err := os.Stat("docqa.toml"); err == nil {
			paths = append(paths, "docqa.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(paths...)
	if err != nil {
		return err
	}

	// Machine-readable output keeps stdout clean
	if outputFormat == "text" {
		logger = common.InitLogger(config)
		common.PrintBanner(config, logger)
	} else {
		logger = common.InitStderrLogger("warn")
	}

	logger.Debug().
		Strs("config_files", paths).
		Str("command", cmd.CommandPath()).
		Msg("Configuration loaded")

	application, err = app.New(cmd.Context(), config, logger)
	if err != nil {
		return err
	}

	documentService = application.DocumentService
	chatService = application.ChatService
	exportService = application.ExportService
	return nil
}

func teardownApp(cmd *cobra.Command, args []string) error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	documentService = nil
	chatService = nil
	exportService = nil
	return err
}

// ownerContext attaches the resolved owner: --owner, then DOCQA_OWNER, then config
func ownerContext(cmd *cobra.Command) (context.Context, error) {
	owner := strings.TrimSpace(ownerFlag)
	if owner == "" {
		owner = strings.TrimSpace(os.Getenv("DOCQA_OWNER"))
	}
	if owner == "" && config != nil {
		owner = strings.TrimSpace(config.Owner)
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: pass --owner or set DOCQA_OWNER", common.ErrMissingOwner)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return common.WithOwner(ctx, owner), nil
}

// requireProviders fails fast when a command needs a provider that has no credentials
func requireProviders() error {
	if application == nil {
		return nil
	}
	return application.RequireProviders()
}

// uploadLimits returns the configured size caps, or the defaults when no
// config was loaded
func uploadLimits() common.LimitsConfig {
	if config == nil {
		return common.LimitsConfig{
			MaxUploadBytes: common.DefaultMaxUploadBytes,
			MaxImageBytes:  common.DefaultMaxImageBytes,
		}
	}
	return config.Limits
}

// errorMessage keeps configuration and owner errors specific and maps
// everything else to the generic user text
func errorMessage(err error) string {
	var cfgErr *common.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return cfgErr.Error()
	case errors.Is(err, common.ErrMissingOwner):
		return err.Error()
	case errors.Is(err, common.ErrInvalidRequest) && !errors.Is(err, common.ErrGenerationFailed):
		return err.Error()
	default:
		return common.UserMessage(err)
	}
}
