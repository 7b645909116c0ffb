package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/client"
	"github.com/rcliao/easiergen/internal/editor"
)

func init() {
	cmd := &cobra.Command{
		Use:       "transform shorten|extend|rephrase",
		Short:     "Rewrite the selected text",
		Long:      "Send the selection to the rewrite service and replace it with the result. The new text stays selected.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(client.Shorten), string(client.Extend), string(client.Rephrase)},
		Run:       runTransform,
	}

	RootCmd.AddCommand(cmd)
}

func runTransform(cmd *cobra.Command, args []string) {
	kind, err := client.ParseTransformation(args[0])
	if err != nil {
		exitErr("transform", err)
	}

	tr, err := client.NewTransformer(cfg.BaseURL, cfg.APIKey,
		client.WithPath(cfg.TransformPath),
		client.WithTimeout(cfg.TransformTimeout),
		client.WithLogger(log.Logger),
	)
	if err != nil {
		exitErr("transform", err)
	}

	editDraft(cmd, "transform", func(ctx context.Context, sess *editor.Session) error {
		_, err := sess.ApplyTransform(ctx, tr.Func(kind))
		return err
	})
}
