package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, tea.WithAltScreen()))
}

// run returns the exit code once the program has quit and every deferred
// close has happened.
func run(args []string, stderr io.Writer, opts ...tea.ProgramOption) int {
	fs := flag.NewFlagSet("campus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, cleanup, err := app.New(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(filepath.Dir(a.Config.Paths.Log), 0755); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	f, err := tea.LogToFile(a.Config.Paths.Log, "campus")
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	defer f.Close()

	log.Printf("campus: starting against %s", a.Config.API.BaseURL)

	p := tea.NewProgram(ui.NewRootModel(a), opts...)
	if _, err := p.Run(); err != nil {
		log.Printf("campus: %v", err)
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
