package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/editor"
	"github.com/rcliao/easiergen/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Focus a field and set the selection",
		Long:  "Focus a field and select the characters in [start, end). Offsets count characters, not bytes. Use start = end for a caret.",
		Run:   runSelect,
	}

	cmd.Flags().String("field", "", "Field: title, text or cta (required)")
	cmd.Flags().Int("start", 0, "Selection start")
	cmd.Flags().Int("end", -1, "Selection end (default: end of field)")

	cmd.MarkFlagRequired("field")

	RootCmd.AddCommand(cmd)
}

func runSelect(cmd *cobra.Command, args []string) {
	field, _ := cmd.Flags().GetString("field")
	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")

	editDraft(cmd, "select", func(_ context.Context, sess *editor.Session) error {
		f := model.Field(field)
		if end < 0 {
			end = len([]rune(sess.Draft().Get(f)))
		}
		_, err := sess.Select(f, start, end)
		return err
	})
}
