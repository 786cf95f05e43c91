package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/kotoba/internal/config"
	"github.com/mrlokans/kotoba/internal/entities"
	"github.com/mrlokans/kotoba/internal/parsers"
	"github.com/mrlokans/kotoba/internal/storage"
)

type ParseDeckCommand struct {
	File         string
	Directory    string
	DatabasePath string
	Save         bool

	cfg *config.Config
	out io.Writer
}

func NewParseDeckCommand(cfg *config.Config) *ParseDeckCommand {
	return &ParseDeckCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *ParseDeckCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("parse-deck", flag.ContinueOnError)

	fs.StringVar(&cmd.File, "file", "", "Markdown file to parse")
	fs.StringVar(&cmd.Directory, "dir", "", "Directory to recursively search for markdown files")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the deck database")
	fs.BoolVar(&cmd.Save, "save", false, "Store the parsed decks")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s parse-deck (-file FILE | -dir DIR) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse vocabulary markdown into decks and optionally store them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s parse-deck -file ./n5.md\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s parse-deck -dir ./vocabulary -save\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if (cmd.File == "") == (cmd.Directory == "") {
		fs.Usage()
		return fmt.Errorf("exactly one of -file or -dir is required")
	}

	return nil
}

func (cmd *ParseDeckCommand) Run() error {
	parser := parsers.NewDeckParser()

	var decks []entities.Deck
	result := parsers.ParseResult{}

	if cmd.File != "" {
		deck, err := parser.ParseFile(cmd.File)
		if err != nil {
			return err
		}
		decks = append(decks, deck)
		result.FilesProcessed = 1
		result.CardsParsed = len(deck.Cards)
	} else {
		if _, err := os.Stat(cmd.Directory); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", cmd.Directory)
		}
		absDir, err := filepath.Abs(cmd.Directory)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		fmt.Fprintf(cmd.out, "Parsing markdown files from directory: %s\n", absDir)

		decks, result, err = parser.ParseDirectory(absDir)
		if err != nil {
			return fmt.Errorf("failed to parse markdown files: %w", err)
		}
	}

	fmt.Fprintf(cmd.out, "\n=== Parsing Results ===\n")
	fmt.Fprintf(cmd.out, "Files processed: %d\n", result.FilesProcessed)
	fmt.Fprintf(cmd.out, "Files failed: %d\n", result.FilesFailed)
	fmt.Fprintf(cmd.out, "Cards parsed: %d\n", result.CardsParsed)

	if len(decks) > 0 {
		fmt.Fprintf(cmd.out, "\n=== Parsed Decks ===\n")
		for i, deck := range decks {
			fmt.Fprintf(cmd.out, "%d. %q (%d cards)\n", i+1, deck.Name, len(deck.Cards))
		}
	}

	if !cmd.Save || len(decks) == 0 {
		return nil
	}

	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath
	store := storage.Open(&cfg)
	defer store.Close()

	if !store.Durable {
		fmt.Fprintf(cmd.out, "\nWarning: durable storage is unavailable, decks will not outlive this process\n")
	}

	ctx := context.Background()
	for i := range decks {
		if _, err := store.Service.AddDeck(ctx, &decks[i]); err != nil {
			return fmt.Errorf("failed to save deck %q: %w", decks[i].Name, err)
		}
	}
	fmt.Fprintf(cmd.out, "\nSaved %d decks to %s storage\n", len(decks), store.Service.BackendName())

	return nil
}
