package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/store"
	"github.com/rcliao/easiergen/internal/usage"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}
	free, err := readUsage(cmd, usage.NewLimiter(s, usage.WithLogger(log.Logger)))
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(struct {
		*store.Stats
		FreeUsage usageView `json:"free_usage"`
	}{stats, free}, "", "  ")
	fmt.Println(string(b))
}
