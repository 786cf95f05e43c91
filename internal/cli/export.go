package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/config"
	"github.com/mrlokans/kotoba/internal/storage"
)

// ExportCommand writes every deck as an export document.
type ExportCommand struct {
	Output       string
	DatabasePath string

	cfg *config.Config
	out io.Writer
}

func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.StringVar(&cmd.Output, "out", "", "Output file (default: stdout)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the deck database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export all decks as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath
	store := storage.Open(&cfg)
	defer store.Close()

	data, err := store.Service.ExportAllData(context.Background())
	if err != nil {
		return fmt.Errorf("failed to export decks: %w", err)
	}

	if cmd.Output == "" {
		_, err := fmt.Fprintln(cmd.out, data)
		return err
	}

	if err := os.WriteFile(cmd.Output, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}
	logrus.WithFields(logrus.Fields{
		"path":    cmd.Output,
		"bytes":   len(data),
		"storage": store.Service.BackendName(),
	}).Info("Decks exported")
	return nil
}
