package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"codeberg.org/snonux/agritranslate/internal/batch"
	"codeberg.org/snonux/agritranslate/internal/catalog"
	"codeberg.org/snonux/agritranslate/internal/cli"
	"codeberg.org/snonux/agritranslate/internal/hosted"
	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/logger"
	"codeberg.org/snonux/agritranslate/internal/models"
	"codeberg.org/snonux/agritranslate/internal/pipeline"
	"codeberg.org/snonux/agritranslate/internal/registry"
	"codeberg.org/snonux/agritranslate/internal/resolver"
	"codeberg.org/snonux/agritranslate/internal/server"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// ErrSourceNotFound is returned when the source dictionary does not exist
var ErrSourceNotFound = errors.New("source file not found")

// Processor handles the command logic
type Processor struct {
	flags  *cli.Flags
	logger *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessor creates a new processor from the current configuration
func NewProcessor(flags *cli.Flags) (*Processor, error) {
	log, err := logger.FromStrings(viper.GetString("log.level"), viper.GetString("log.format"), os.Stderr)
	if err != nil {
		return nil, err
	}
	return &Processor{
		flags:  flags,
		logger: log,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// SetLogger replaces the logger
func (p *Processor) SetLogger(l *slog.Logger) {
	p.logger = l
}

// SourcePath returns the path of the source dictionary
func SourcePath() string {
	return filepath.Join(
		viper.GetString("locales.dir"),
		viper.GetString("locales.source_lang"),
		viper.GetString("locales.file"),
	)
}

// ProcessBatch translates the source dictionary into every configured target
func (p *Processor) ProcessBatch(ctx context.Context) error {
	sourcePath := SourcePath()
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath)
	}

	source, err := batch.LoadDictionary(sourcePath)
	if err != nil {
		return err
	}

	if err := translation.CheckCommand(viper.GetString("local.command")); err != nil {
		return err
	}

	reg, res, err := p.openResolver(p.Stderr)
	if err != nil {
		return err
	}
	defer reg.Close()

	if p.flags.ForceInstall {
		fmt.Fprintln(p.Stdout, "Force reinstall requested, reinstalling all target packages")
	}

	orchestrator := batch.NewOrchestrator(res, batch.Options{
		OutputDir:    viper.GetString("locales.dir"),
		FileName:     viper.GetString("locales.file"),
		ForceInstall: p.flags.ForceInstall,
		Progress:     p.Stderr,
		Logger:       p.logger,
	})

	pairs := lang.PairsFrom(viper.GetString("locales.source_lang"), viper.GetStringSlice("batch.targets"))
	_, report := orchestrator.Run(ctx, pairs, source)
	report.PrintSummary(p.Stdout)

	if report.Err != nil {
		return fmt.Errorf("batch interrupted: %w", report.Err)
	}
	if len(pairs) > 0 && report.Written() == 0 {
		return fmt.Errorf("no target language could be translated")
	}
	return nil
}

// Serve runs the HTTP service until ctx is done or the process is signalled.
// The hosted model is built once here and shared by every request.
func (p *Processor) Serve(ctx context.Context) error {
	config := HostedConfig()
	engine, err := hosted.NewEngine(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create hosted engine: %w", err)
	}
	model := hosted.New(engine, config, p.logger)
	p.logger.Info("hosted model ready", "engine", model.Name())

	srv := server.New(viper.GetString("server.addr"), viper.GetDuration("server.shutdown_timeout"), p.logger)
	return srv.Run(ctx, server.NewRouter(model, p.logger))
}

// Pipe serves one pipeline request and returns the exit status
func (p *Processor) Pipe(ctx context.Context) int {
	if err := translation.CheckCommand(viper.GetString("local.command")); err != nil {
		p.logger.Error("package runtime unavailable", "error", err)
		return pipeline.WriteError(p.Stdout, err.Error(), p.logger)
	}

	reg, res, err := p.openResolver(nil)
	if err != nil {
		p.logger.Error("failed to open package registry", "error", err)
		return pipeline.WriteError(p.Stdout, err.Error(), p.logger)
	}
	defer reg.Close()

	adapter := pipeline.New(res, viper.GetString("locales.source_lang"), p.logger)
	return adapter.Run(ctx, p.Stdin, p.Stdout)
}

// ListModels prints installed and available packages
func (p *Processor) ListModels(ctx context.Context) error {
	reg, err := p.openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	lister := models.NewLister(reg, catalog.New(viper.GetString("packages.index_url")), p.Stdout)
	if viper.GetString("hosted.backend") == "openai" {
		lister.WithOpenAI(cli.GetOpenAIKey())
	}
	return lister.ListAvailableModels(ctx)
}

// HostedConfig builds the hosted model configuration from viper
func HostedConfig() *hosted.Config {
	backend := viper.GetString("hosted.backend")
	return &hosted.Config{
		Backend:         backend,
		Endpoint:        viper.GetString("hosted.endpoint"),
		APIKey:          cli.GetHostedAPIKey(backend),
		Model:           viper.GetString("hosted.model"),
		Function:        viper.GetString("hosted.function"),
		Timeout:         viper.GetDuration("hosted.timeout"),
		BreakerFailures: viper.GetUint32("hosted.breaker.failures"),
		BreakerCooldown: viper.GetDuration("hosted.breaker.cooldown"),
	}
}

// LocalConfig builds the package runtime configuration from viper
func LocalConfig() *translation.LocalConfig {
	return &translation.LocalConfig{
		Command: viper.GetString("local.command"),
		Args:    viper.GetStringSlice("local.args"),
		Env:     viper.GetStringSlice("local.env"),
	}
}

func (p *Processor) openRegistry() (*registry.Registry, error) {
	reg, err := registry.Open(viper.GetString("packages.dir"), viper.GetString("packages.registry_db"), p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open package registry: %w", err)
	}
	return reg, nil
}

// openResolver opens the registry and builds a resolver on top of it.
// progress receives download progress bars, nil disables them.
func (p *Processor) openResolver(progress io.Writer) (*registry.Registry, *resolver.Resolver, error) {
	reg, err := p.openRegistry()
	if err != nil {
		return nil, nil, err
	}

	var opts []catalog.Option
	if progress != nil {
		opts = append(opts, catalog.WithProgress(progress))
	}
	cat := catalog.New(viper.GetString("packages.index_url"), opts...)

	return reg, resolver.New(reg, cat, LocalConfig(), p.logger), nil
}
