// Command imsctl is a command-line front end for the interaction management
// backend: list, inspect, and search interactions, show site membership, or
// run the diagnostics server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	root, err := NewCompositionRoot()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := root.Cleanup(); err != nil {
			root.Logger.Error("Failed to cleanup resources", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var runErr error
	switch os.Args[1] {
	case "list":
		runErr = runList(ctx, root, os.Args[2:])
	case "get":
		runErr = runGet(ctx, root, os.Args[2:])
	case "search":
		runErr = runSearch(ctx, root, os.Args[2:])
	case "sites":
		runErr = runSites(ctx, root)
	case "serve":
		runErr = runServe(root)
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: imsctl <command> [flags]

Commands:
  list     list interactions in the active site
  get      fetch one interaction by id
  search   search interactions by free text
  sites    list the sites the current user belongs to
  serve    run the diagnostics server`)
}

// selectSite loads the user's site memberships and activates one: the
// --site flag value when given, otherwise the only membership.
func selectSite(ctx context.Context, root *CompositionRoot, siteID int) error {
	sites, err := root.Client.Sites().LoadUserSites(ctx)
	if err != nil {
		return err
	}

	if siteID == 0 {
		if len(sites) != 1 {
			return fmt.Errorf("user belongs to %d sites, pick one with --site", len(sites))
		}
		siteID = sites[0].ID
	}
	return root.Client.SiteContext().SetActive(siteID)
}

func runList(ctx context.Context, root *CompositionRoot, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	siteID := fs.Int("site", 0, "site to operate in")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 20, "results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := selectSite(ctx, root, *siteID); err != nil {
		return err
	}

	result, err := root.Client.Interactions().List(ctx, *page, *pageSize)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runGet(ctx context.Context, root *CompositionRoot, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	siteID := fs.Int("site", 0, "site to operate in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: imsctl get [flags] <id>")
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid interaction id %q", fs.Arg(0))
	}

	if err := selectSite(ctx, root, *siteID); err != nil {
		return err
	}

	result, err := root.Client.Interactions().Get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runSearch(ctx context.Context, root *CompositionRoot, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	siteID := fs.Int("site", 0, "site to operate in")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 20, "results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: imsctl search [flags] <query>")
	}

	if err := selectSite(ctx, root, *siteID); err != nil {
		return err
	}

	result, err := root.Client.Interactions().Search(ctx, fs.Arg(0), *page, *pageSize)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runSites(ctx context.Context, root *CompositionRoot) error {
	sites, err := root.Client.Sites().UserSites(ctx)
	if err != nil {
		return err
	}
	return printJSON(sites)
}

func runServe(root *CompositionRoot) error {
	if root.DiagServer == nil {
		return fmt.Errorf("diagnostics server disabled, set diag.addr in the config")
	}

	go func() {
		if err := root.DiagServer.Start(root.Config.Diag.Addr); err != nil {
			root.Logger.Error("Diagnostics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	root.Logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return root.DiagServer.Stop(ctx)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
