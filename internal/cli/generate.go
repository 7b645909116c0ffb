package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/client"
	"github.com/rcliao/easiergen/internal/model"
	"github.com/rcliao/easiergen/internal/usage"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate five post ideas for a topic",
		Long: "Generate five post ideas. Signed-in users spend one credit per successful call; " +
			"anonymous use is limited per day. Use --pick to load a suggestion into the draft.",
		Run: runGenerate,
	}

	cmd.Flags().StringP("topic", "t", "", "Topic (required)")
	cmd.Flags().String("language", "DE", "Language: DE, US, FR, ES, IT")
	cmd.Flags().String("address", "formally", "Address: formally or informally")
	cmd.Flags().String("mood", "Inspiring", "Mood: Inspiring, Provocative, Practical, Storytelling, Analytical")
	cmd.Flags().String("perspective", "me", "Perspective: me or us")
	cmd.Flags().Int("pick", 0, "Load suggestion N (1-5) into the draft")

	cmd.MarkFlagRequired("topic")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	topic, _ := cmd.Flags().GetString("topic")
	language, _ := cmd.Flags().GetString("language")
	address, _ := cmd.Flags().GetString("address")
	mood, _ := cmd.Flags().GetString("mood")
	perspective, _ := cmd.Flags().GetString("perspective")
	pick, _ := cmd.Flags().GetInt("pick")

	if pick < 0 || pick > client.SuggestionCount {
		exitErr("generate", fmt.Errorf("--pick must be between 1 and %d", client.SuggestionCount))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	quota := usage.NewLimiter(s, usage.WithLogger(log.Logger))
	gen, err := client.NewGenerator(cfg.BaseURL, cfg.APIKey,
		client.StaticIdentity(currentUser()), s, quota,
		client.WithPath(cfg.IdeasPath),
		client.WithTimeout(cfg.GenerateTimeout),
		client.WithRetry(cfg.MaxRetries, cfg.InitialBackoff, cfg.MaxBackoff),
		client.WithLogger(log.Logger),
	)
	if err != nil {
		exitErr("generate", err)
	}

	suggestions, err := gen.Generate(cmd.Context(), client.GenerateRequest{
		Topic:       topic,
		Language:    language,
		Address:     address,
		Mood:        mood,
		Perspective: perspective,
	})
	if err != nil {
		exitErr("generate", err)
	}

	if pick > 0 {
		sess, err := loadSession(cmd.Context(), s)
		if err != nil {
			exitErr("load draft", err)
		}
		sess.ApplySuggestion(suggestions[pick-1])
		if err := saveSession(cmd.Context(), s, sess); err != nil {
			exitErr("save draft", err)
		}
	}

	output(suggestions, func() string { return suggestionsText(suggestions) })
}

func suggestionsText(suggestions []model.Suggestion) string {
	var b strings.Builder
	for i, sug := range suggestions {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n\n%s\n\n%s\n", i+1, sug.Title, sug.Text, sug.CTA)
	}
	return b.String()
}
