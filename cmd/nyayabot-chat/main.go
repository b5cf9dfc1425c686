package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nyayabot/internal/tui"
)

func main() {
	var (
		serverURL string
		language  string
		topK      int
	)
	flag.StringVar(&serverURL, "server", "http://localhost:8000", "Base URL of the NyayaBot API server")
	flag.StringVar(&language, "lang", "auto", "Answer language: en, hi, mr or auto")
	flag.IntVar(&topK, "top-k", 5, "Number of source passages to retrieve")
	flag.Parse()

	client := tui.NewClient(serverURL, 2*time.Minute)
	p := tea.NewProgram(tui.New(client, language, topK), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
