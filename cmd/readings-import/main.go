package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/pvsizer/internal/log"
	"github.com/chrissnell/pvsizer/internal/readings"
)

func main() {
	var (
		csvFile = flag.String("csv", "", "Path to the logger CSV export (required)")
		dbFile  = flag.String("db", "", "Path to the SQLite readings database (required)")
		debug   = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *csvFile == "" || *dbFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -csv <readings.csv> -db <readings.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	fmt.Printf("Importing readings...\n")
	fmt.Printf("  Source: %s\n", *csvFile)
	fmt.Printf("  Target: %s\n", *dbFile)

	src, err := readings.OpenCSV(*csvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading CSV: %v\n", err)
		os.Exit(1)
	}
	rows := src.All()
	fmt.Printf("  Parsed %d readings, skipped %d rows\n", len(rows), src.Skipped())

	store, err := readings.OpenSQLite(*dbFile, log.GetSugaredLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	n, err := store.Insert(ctx, rows...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing readings: %v\n", err)
		os.Exit(1)
	}
	total, err := store.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting readings: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d readings (%d in database)\n", n, total)
}
