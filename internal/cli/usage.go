package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/usage"
)

type usageView struct {
	Date      string `json:"date"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show today's anonymous generation quota",
		Run:   runUsage,
	}

	RootCmd.AddCommand(cmd)
}

func runUsage(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	v, err := readUsage(cmd, usage.NewLimiter(s, usage.WithLogger(log.Logger)))
	if err != nil {
		exitErr("usage", err)
	}
	output(v, func() string {
		return fmt.Sprintf("%d of %d free generations left today (%s)", v.Remaining, v.Limit, v.Date)
	})
}

func readUsage(cmd *cobra.Command, l *usage.Limiter) (usageView, error) {
	rec, err := l.Record(cmd.Context())
	if err != nil {
		return usageView{}, err
	}
	return usageView{
		Date:      rec.Date,
		Used:      rec.Count,
		Remaining: max(usage.DailyLimit-rec.Count, 0),
		Limit:     usage.DailyLimit,
	}, nil
}
