package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/editor"
	"github.com/rcliao/easiergen/internal/glyph"
)

func init() {
	cmd := &cobra.Command{
		Use:       "style bold|italic|clear",
		Short:     "Style the selected text",
		Long:      "Rewrite the selection with Unicode bold or italic letters, or map styled letters back to plain ones.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bold", "italic", "clear"},
		Run:       runStyle,
	}

	RootCmd.AddCommand(cmd)
}

func runStyle(cmd *cobra.Command, args []string) {
	if args[0] == "clear" {
		editDraft(cmd, "style", func(_ context.Context, sess *editor.Session) error {
			_, err := sess.ClearStyle()
			return err
		})
		return
	}

	style, err := glyph.ParseStyle(args[0])
	if err != nil {
		exitErr("style", err)
	}
	editDraft(cmd, "style", func(_ context.Context, sess *editor.Session) error {
		_, err := sess.ApplyStyle(style)
		return err
	})
}
