package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvran/adventure-gm/internal/config"
	"github.com/corvran/adventure-gm/internal/index"
)

var indexSince string

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the Adventure Index read model",
	}
	cmd.AddCommand(indexListCmd())
	return cmd
}

func indexListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List adventures recorded in the index",
		Run: func(cmd *cobra.Command, args []string) {
			runIndexList()
		},
	}
	c.Flags().StringVar(&indexSince, "since", "", "only list adventures active since this RFC3339 timestamp")
	return c
}

func runIndexList() {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	idx, err := index.Open(cfg.DatabaseURL, cfg.AdventuresDir+"/index.db")
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer idx.Close()

	since := time.Time{}
	if indexSince != "" {
		t, err := time.Parse(time.RFC3339, indexSince)
		if err != nil {
			fmt.Fprintln(os.Stderr, "--since must be RFC3339:", err)
			os.Exit(1)
		}
		since = t
	}

	rows, err := idx.List(context.Background(), since)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}

	for _, row := range rows {
		fmt.Printf("%s\t%s\t%s\t%s\n", row.ID, row.LastActiveAt.Format(time.RFC3339), row.Theme, row.Scene)
	}
}
