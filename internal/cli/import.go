package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/kotoba/internal/config"
	"github.com/mrlokans/kotoba/internal/storage"
)

// ImportCommand replaces all decks with the contents of an export document.
type ImportCommand struct {
	Input        string
	DatabasePath string

	cfg *config.Config
	out io.Writer
}

func NewImportCommand(cfg *config.Config) *ImportCommand {
	return &ImportCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	fs.StringVar(&cmd.Input, "in", "", "Export document to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the deck database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -in FILE [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replace all decks with the ones in an export document.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Input == "" {
		fs.Usage()
		return fmt.Errorf("input file is required")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Input, err)
	}

	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath
	store := storage.Open(&cfg)
	defer store.Close()

	if err := store.Service.ImportData(context.Background(), string(data)); err != nil {
		return err
	}

	decks, err := store.Service.GetAllDecks(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Imported %d decks into %s storage\n", len(decks), store.Service.BackendName())
	return nil
}
