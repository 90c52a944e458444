package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"shoplist/internal/app"
	"shoplist/internal/categorizer"
	"shoplist/internal/clipper"
	"shoplist/internal/config"
	"shoplist/internal/database"
	"shoplist/internal/llm"
	"shoplist/internal/metrics"
	"shoplist/internal/storage"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	backend, err := app.NewBackend(cfg, db.SQL)
	if err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}

	exportStore, err := storage.NewExportStore(cfg.ExportPath)
	if err != nil {
		log.Fatalf("Failed to initialize export store: %v", err)
	}

	metricsStore := metrics.NewStore(db.SQL)

	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize text generator: %v", err)
	}
	var suggester app.CategorySuggester
	if textGen != nil {
		defer textGen.Close()
		suggester = categorizer.New(textGen, metricsStore)
	}

	application := app.NewApp(backend, exportStore, clipper.NewClipper(), suggester, metricsStore, os.Stdout)

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, application *app.App, command string, args []string) error {
	switch command {
	case "lists":
		return application.ListLists(ctx)
	case "show":
		id, err := singleArg(command, args)
		if err != nil {
			return err
		}
		return application.ShowList(ctx, id)
	case "delete":
		id, err := singleArg(command, args)
		if err != nil {
			return err
		}
		return application.DeleteList(ctx, id)
	case "categories":
		return application.ListCategories(ctx)
	case "add-category":
		name, err := singleArg(command, args)
		if err != nil {
			return err
		}
		_, err = application.AddCategory(ctx, name)
		return err
	case "export":
		id, err := singleArg(command, args)
		if err != nil {
			return err
		}
		_, err = application.ExportList(ctx, id)
		return err
	case "import":
		importCmd := flag.NewFlagSet("import", flag.ExitOnError)
		name := importCmd.String("name", "", "Name of the new list")
		category := importCmd.String("category", "", "Put every product in this category instead of suggesting one")
		importCmd.Parse(args)
		if *name == "" || importCmd.NArg() != 1 {
			return fmt.Errorf("usage: shoplist import -name <list> [-category <category>] <url>")
		}
		_, err := application.ImportURL(ctx, *name, *category, importCmd.Arg(0))
		return err
	case "usage":
		usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := usageCmd.Int("days", 7, "Report the last N days")
		usageCmd.Parse(args)
		return application.PrintUsage(ctx, *days)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args)
		return application.CleanupMetrics(ctx, *days)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	return nil
}

func singleArg(command string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("usage: shoplist %s <argument>", command)
	}
	return args[0], nil
}

func printUsage() {
	fmt.Println("Usage: shoplist <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  lists              List saved shopping lists")
	fmt.Println("  show <id>          Show a list grouped by category")
	fmt.Println("  delete <id>        Delete a list")
	fmt.Println("  categories         List categories")
	fmt.Println("  add-category <n>   Add a category")
	fmt.Println("  export <id>        Write a list snapshot to the export directory")
	fmt.Println("  import             Create a list from the products on a web page")
	fmt.Println("  usage              Show category suggestion token usage")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
