package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/editor"
)

func init() {
	cmd := &cobra.Command{
		Use:   "insert [content]",
		Short: "Insert text at the cursor",
		Long:  "Insert text (emoji, symbols, anything) at the selection start. Content can be a positional arg or piped via stdin.",
		Run:   runInsert,
	}

	RootCmd.AddCommand(cmd)
}

func runInsert(cmd *cobra.Command, args []string) {
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = strings.TrimRight(string(b), "\n")
		}
	}
	if content == "" {
		exitErr("insert", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	editDraft(cmd, "insert", func(_ context.Context, sess *editor.Session) error {
		_, err := sess.InsertAtCursor(content)
		return err
	})
}
