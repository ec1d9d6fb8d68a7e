package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/pagekeeper/pagekeeper/internal/config"
	"github.com/pagekeeper/pagekeeper/internal/database"
	"github.com/pagekeeper/pagekeeper/internal/database/catalog"
	"github.com/pagekeeper/pagekeeper/internal/importer"
)

// ImportBooksCommand loads books into the catalog from a CSV file.
type ImportBooksCommand struct {
	CSVPath      string
	DatabasePath string
	Verbose      bool
}

func NewImportBooksCommand() *ImportBooksCommand {
	return &ImportBooksCommand{}
}

func (cmd *ImportBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-books", flag.ExitOnError)

	fs.StringVar(&cmd.CSVPath, "file", "", "Path to the CSV file to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every skipped row")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-books -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books into the catalog from a CSV file.\n\n")
		fmt.Fprintf(os.Stderr, "Expected columns: title, authors, genres, isbn, page_count,\n")
		fmt.Fprintf(os.Stderr, "description, image_url. Authors and genres cells may hold several\n")
		fmt.Fprintf(os.Stderr, "values separated by semicolons.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -file catalog.csv -db ./pagekeeper.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.CSVPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ImportBooksCommand) Run() error {
	fmt.Println("Book Import")
	fmt.Println("===========")

	file, err := os.Open(cmd.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	imp := importer.NewImporter(catalog.NewRepository(db.DB))
	result, err := imp.Import(file)
	if err != nil {
		return err
	}

	fmt.Printf("\nRows read:  %d\n", result.TotalRows)
	fmt.Printf("Imported:   %d\n", result.Imported)
	fmt.Printf("Duplicates: %d\n", result.Duplicates)
	fmt.Printf("Skipped:    %d\n", len(result.Errors))

	if cmd.Verbose {
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	return nil
}
