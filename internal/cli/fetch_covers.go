package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pagekeeper/pagekeeper/internal/config"
	"github.com/pagekeeper/pagekeeper/internal/covers"
	"github.com/pagekeeper/pagekeeper/internal/database"
	"github.com/pagekeeper/pagekeeper/internal/database/catalog"
)

// FetchCoversCommand downloads every missing cover image to local storage.
type FetchCoversCommand struct {
	DatabasePath string
	CoversDir    string
}

func NewFetchCoversCommand() *FetchCoversCommand {
	return &FetchCoversCommand{}
}

func (cmd *FetchCoversCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("fetch-covers", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.CoversDir, "covers", config.DefaultCoversDir, "Directory where cover images are stored")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s fetch-covers [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download cover images for every book that has a remote cover URL\n")
		fmt.Fprintf(os.Stderr, "but no local copy yet. The same sweep runs nightly when the server\n")
		fmt.Fprintf(os.Stderr, "is up; this command is for one-off runs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *FetchCoversCommand) Run() error {
	fmt.Println("Cover Fetch")
	fmt.Println("===========")

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	store := catalog.NewRepository(db.DB)
	fetcher, err := covers.NewFetcher(cmd.CoversDir)
	if err != nil {
		return err
	}

	books, err := store.BooksMissingLocalImage()
	if err != nil {
		return fmt.Errorf("list books missing covers: %w", err)
	}

	if len(books) == 0 {
		fmt.Println("All covers are already cached.")
		return nil
	}

	ctx := context.Background()
	fetched := 0
	failed := 0

	for _, book := range books {
		localPath, err := fetcher.Fetch(ctx, book.ID, book.ImageURL)
		if err != nil {
			fmt.Printf("  FAIL %s: %v\n", book.Title, err)
			failed++
			continue
		}
		if err := store.SetLocalImage(book.ID, localPath); err != nil {
			fmt.Printf("  FAIL %s: %v\n", book.Title, err)
			failed++
			continue
		}
		fetched++
	}

	fmt.Printf("\nFetched: %d\nFailed:  %d\n", fetched, failed)
	return nil
}
