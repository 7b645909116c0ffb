package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Inspect or grant credits",
	}

	balance := &cobra.Command{
		Use:   "balance",
		Short: "Show the signed-in user's credit balance",
		Run:   runCreditsBalance,
	}

	grant := &cobra.Command{
		Use:   "grant",
		Short: "Apply a completed checkout",
		Long:  "Apply a completed checkout session: one credit per full 100 cents. Re-applying the same session is a no-op.",
		Run:   runCreditsGrant,
	}
	grant.Flags().String("session", "", "Checkout session ID (required)")
	grant.Flags().Int64("amount", 0, "Amount paid in cents (required)")
	grant.MarkFlagRequired("session")
	grant.MarkFlagRequired("amount")

	cmd.AddCommand(balance, grant)
	RootCmd.AddCommand(cmd)
}

func runCreditsBalance(cmd *cobra.Command, args []string) {
	user := requireUser()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Balance(cmd.Context(), user)
	if err != nil {
		exitErr("balance", err)
	}
	output(map[string]any{"user_id": user, "credits": n}, func() string {
		return fmt.Sprintf("%s has %d credits", user, n)
	})
}

func runCreditsGrant(cmd *cobra.Command, args []string) {
	user := requireUser()
	session, _ := cmd.Flags().GetString("session")
	amount, _ := cmd.Flags().GetInt64("amount")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	grant, applied, err := s.GrantCredits(cmd.Context(), store.GrantParams{
		UserID:      user,
		SessionID:   session,
		AmountTotal: amount,
	})
	if err != nil {
		exitErr("grant", err)
	}
	output(map[string]any{"grant": grant, "applied": applied}, func() string {
		if !applied {
			return fmt.Sprintf("session %s was already applied", session)
		}
		return fmt.Sprintf("granted %d credits to %s", grant.Credits, user)
	})
}
