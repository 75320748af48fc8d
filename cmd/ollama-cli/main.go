package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/integrail/ollama-client/internal/build"
	"github.com/integrail/ollama-client/pkg/chat"
	"github.com/integrail/ollama-client/pkg/client"
	"github.com/integrail/ollama-client/pkg/config"
	"github.com/integrail/ollama-client/pkg/llm"
	"github.com/integrail/ollama-client/pkg/util"
)

const defaultPrompt = "Write a short first-person comment on a post saying: \"Vasily successfully deployed DeepSeek locally with docker-compose\""

// errUnhealthy and errNoResult end the process with a non-zero status without a usage dump.
var (
	errUnhealthy = errors.New("service is not healthy")
	errNoResult  = errors.New("no result obtained")
)

type options struct {
	cfg         config.Config
	prompt      string
	options     []string
	interactive bool
}

func main() {
	// a broken environment only fails commands that need it, --help and --version still work
	cfg, loadErr := config.Load()
	if loadErr != nil {
		cfg = config.Defaults()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(cfg, loadErr, os.Stdout).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, loadErr error, out io.Writer) *cobra.Command {
	opts := &options{cfg: cfg, prompt: defaultPrompt}
	rootCmd := &cobra.Command{
		Use:           "ollama-cli",
		Version:       build.Version,
		Short:         "Ask a local Ollama server for a completion",
		Long:          "Checks that the Ollama server is up and sends a single generation request with retries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				fmt.Fprintln(out, chat.ErrorStyle.Render("ERROR: "+loadErr.Error()))
			}
			return loadErr
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), opts, out)
			if err != nil && !errors.Is(err, errUnhealthy) && !errors.Is(err, errNoResult) {
				fmt.Fprintln(out, chat.ErrorStyle.Render("ERROR: "+err.Error()))
			}
			return err
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.cfg.Url, "url", "u", opts.cfg.Url, "Ollama base URL")
	rootCmd.PersistentFlags().StringVarP(&opts.cfg.Model, "model", "m", opts.cfg.Model, "Model to generate with")
	rootCmd.PersistentFlags().IntVarP(&opts.cfg.MaxRetries, "retries", "r", opts.cfg.MaxRetries, "Max attempts per generation request")
	rootCmd.PersistentFlags().StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&opts.prompt, "prompt", "p", opts.prompt, "Prompt to send")
	rootCmd.PersistentFlags().StringSliceVarP(&opts.options, "option", "o", []string{}, "Sampling option override, e.g. temperature=0.2 (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&opts.interactive, "interactive", "i", false, "Start an interactive chat after the health check")
	return rootCmd
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level")
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	log, err := newLogger(opts.cfg.LogLevel)
	if err != nil {
		return err
	}
	if opts.cfg.MaxRetries <= 0 {
		return errors.Errorf("--retries must be positive, got %d", opts.cfg.MaxRetries)
	}
	sampling, err := util.ParseOptions(opts.options)
	if err != nil {
		return err
	}

	ollama := client.NewClient(client.Config{BaseURL: opts.cfg.Url}, client.WithLogger(log))
	if !ollama.CheckHealth(ctx) {
		fmt.Fprintln(out, chat.ErrorStyle.Render(fmt.Sprintf("Server %s is not available. Check that Ollama is running: docker-compose ps", ollama.BaseURL())))
		return errUnhealthy
	}
	log.WithField("url", ollama.BaseURL()).Debug("service is healthy")

	if opts.interactive {
		return runChat(ctx, opts, ollama, sampling)
	}

	res, err := llm.NewOllama(ollama).Generate(ctx, llm.GenerateRequest{
		Prompt:     opts.prompt,
		Model:      opts.cfg.Model,
		MaxRetries: opts.cfg.MaxRetries,
		Options:    sampling,
	})
	if errors.Is(err, client.ErrExhausted) || (err == nil && res.Empty) {
		log.WithError(err).Debug("generation produced no result")
		fmt.Fprintln(out, chat.ErrorStyle.Render("Failed to get a response. Check:"))
		fmt.Fprintf(out, "1. The model is pulled: docker-compose exec ollama ollama list (looking for %s)\n", opts.cfg.Model)
		fmt.Fprintln(out, "2. There is enough memory: free -h")
		return errNoResult
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, chat.ResponseStyle.Render("Model response:"))
	fmt.Fprintln(out, res.Response)
	return nil
}

func runChat(ctx context.Context, opts *options, ollama *client.Client, sampling map[string]float64) error {
	model := chat.BubbleClient(ctx, chat.Config{
		Url:        ollama.BaseURL(),
		Model:      opts.cfg.Model,
		MaxRetries: opts.cfg.MaxRetries,
		Options:    sampling,
	}, llm.NewOllama(ollama))
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrapf(err, "chat terminated")
	}
	return nil
}
