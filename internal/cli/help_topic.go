package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/helptext"
)

func init() {
	cmd := &cobra.Command{
		Use:   "help-topic [topic]",
		Short: "Show a help page (editor, ideas, preview)",
		Long:  "Show a help page as HTML, or as markdown with --raw. Without a topic, list the topics.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runHelpTopic,
	}

	cmd.Flags().Bool("raw", false, "Print the markdown source")

	RootCmd.AddCommand(cmd)
}

func runHelpTopic(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		fmt.Println(strings.Join(helptext.Topics(), "\n"))
		return
	}
	raw, _ := cmd.Flags().GetBool("raw")

	render := helptext.Render
	if raw {
		render = helptext.Source
	}
	out, err := render(args[0])
	if err != nil {
		exitErr("help", err)
	}
	fmt.Print(out)
}
