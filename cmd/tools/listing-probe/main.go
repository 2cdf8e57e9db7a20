// cmd/tools/listing-probe/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Dr-Musa/najah-realestate/internal/common/config"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/validation"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
	"github.com/Dr-Musa/najah-realestate/internal/providers"
	"github.com/Dr-Musa/najah-realestate/pkg/registry"
)

func main() {
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	registryCmd := flag.NewFlagSet("registry", flag.ExitOnError)

	// Run command flags
	query := runCmd.String("query", "", "Free-text query (e.g., \"فيلا للبيع في الرياض\")")
	phone := runCmd.String("phone", "", "Search by phone number instead of a query")
	city := runCmd.String("city", "", "City filter")
	rooms := runCmd.String("rooms", "", "Rooms filter")
	fixture := runCmd.String("fixture", "", "JSON file of fragments; when empty the configured provider is used")
	seed := runCmd.Int64("seed", 1, "Seed for estimated room counts")
	limit := runCmd.Int("limit", 0, "Maximum listings to print (0 = all)")
	timeout := runCmd.Duration("timeout", 90*time.Second, "Run timeout")
	verbose := runCmd.Bool("v", false, "Log pipeline details to stderr")

	// Registry command flags
	registryPath := registryCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd.Parse(os.Args[2:])
		req := models.SearchRequest{Query: *query, Phone: *phone, Limit: *limit}
		if *city != "" || *rooms != "" {
			req.Filters = &models.SearchFilters{City: *city, Rooms: *rooms}
		}
		if err := run(req, *fixture, *seed, *timeout, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "registry":
		registryCmd.Parse(os.Args[2:])
		if err := checkRegistry(*registryPath); err != nil {
			fmt.Fprintf(os.Stderr, "Registry invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry is valid.")

	default:
		help()
		os.Exit(1)
	}
}

func run(req models.SearchRequest, fixturePath string, seed int64, timeout time.Duration, verbose bool) error {
	query := listing.QueryFromRequest(req)
	if query == "" {
		return fmt.Errorf("one of -query, -phone, -city or -rooms is required")
	}

	log := logger.NewNoOpLogger()
	if verbose {
		log = logger.NewStructured("debug", "console", "stderr")
	}

	var (
		searcher listing.Searcher
		err      error
	)
	if fixturePath != "" {
		searcher, err = providers.LoadFixture(fixturePath)
	} else {
		var cfg *config.Config
		if cfg, err = config.Load(); err == nil {
			// A one-shot probe does not share the service's provider budget.
			searcher, err = providers.New(cfg, nil, log)
		}
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pipeline := listing.NewPipeline(searcher, listing.NewExtractor(listing.NewRandomRoomGuesser(seed)), log)
	res := pipeline.Run(ctx, query)

	if res.ProviderErr != nil {
		fmt.Fprintf(os.Stderr, "Provider failed: %v\n", res.ProviderErr)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(models.NewSearchResponse(res.RunID, res.Mode.String(), res.Listings, req.Limit))
}

// checkRegistry loads the registry and compiles every activity's input schema.
func checkRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}
	for _, act := range reg.Activities {
		if err := act.Check(); err != nil {
			return err
		}
		if _, err := validation.NewValidator(act.InputSchema); err != nil {
			return fmt.Errorf("activity %s: %w", act.ID, err)
		}
		fmt.Printf("  %-40s %s\n", act.ID, act.TaskType)
	}
	return nil
}

func help() {
	fmt.Println("Usage: listing-probe <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  run       Run one search and print ranked listings as JSON")
	fmt.Println("  registry  Validate the activity registry")
	fmt.Println("Use 'listing-probe <command> -h' for more information on a command.")
}
