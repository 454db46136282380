package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/corvran/adventure-gm/internal/config"
)

// doctorLineWidth bounds printed paths to a typical terminal column count;
// go-runewidth measures by display cells, not bytes, so long adventure
// directory paths with wide characters still truncate cleanly.
const doctorLineWidth = 72

func truncatePath(p string) string {
	return runewidth.Truncate(p, doctorLineWidth, "…")
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("adventure-gm doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (not found, using defaults + env)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Printf("  Project dir:    %s", truncatePath(cfg.ProjectDir))
	if info, err := os.Stat(cfg.ProjectDir); err != nil || !info.IsDir() {
		fmt.Println(" (MISSING)")
	} else {
		fmt.Println(" (OK)")
	}

	fmt.Printf("  Adventures dir: %s\n", truncatePath(cfg.AdventuresDir))

	if cfg.MockSDK {
		fmt.Println("  Agent backend:  MOCK_SDK simulator")
	} else {
		fmt.Printf("  Agent backend:  %s", cfg.AgentCommand)
		if _, err := exec.LookPath(cfg.AgentCommand); err != nil {
			fmt.Println(" (NOT FOUND ON PATH)")
		} else {
			fmt.Println(" (OK)")
		}
	}

	if cfg.DatabaseURL != "" {
		fmt.Println("  Adventure index: Postgres")
	} else {
		fmt.Println("  Adventure index: embedded SQLite")
	}
}
