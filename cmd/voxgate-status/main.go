package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/voxgate/voxgate/internal/statuspanel"
)

var version = "dev"

const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "voxgate server base URL")
	watch := flag.Duration("watch", 0, "refresh interval; 0 fetches once and exits")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("voxgate-status version=%s\n", version)
		return
	}

	client := &statuspanel.Client{BaseURL: *url}

	if *watch <= 0 {
		ui := fetchOnce(client)
		printPanel(ui, !*noColor)
		if ui.Errored() {
			os.Exit(1)
		}
		return
	}

	ctrl := statuspanel.NewController(client, func(ui statuspanel.UIState) {
		fmt.Print("\033[H\033[2J") // clear screen between refreshes
		printPanel(ui, !*noColor)
	})
	go func() {
		ticker := time.NewTicker(*watch)
		defer ticker.Stop()
		for range ticker.C {
			ctrl.Refresh()
		}
	}()
	ctrl.Run(context.Background())
}

func fetchOnce(client *statuspanel.Client) statuspanel.UIState {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	health, cfg, err := client.Fetch(ctx)
	if err != nil {
		return statuspanel.RenderError(err)
	}
	return statuspanel.Render(health, cfg)
}

func printPanel(ui statuspanel.UIState, color bool) {
	for _, row := range ui.Rows {
		value := row.Value
		if color {
			switch row.Class {
			case statuspanel.ClassOK:
				value = ansiGreen + value + ansiReset
			case statuspanel.ClassError:
				value = ansiRed + value + ansiReset
			}
		}
		fmt.Printf("%-18s %s\n", row.Label, value)
	}
	if ui.Version != "" {
		if color {
			fmt.Printf("%sversion %s%s\n", ansiDim, ui.Version, ansiReset)
		} else {
			fmt.Printf("version %s\n", ui.Version)
		}
	}
}
