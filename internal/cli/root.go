// Package cli implements the easiergen CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/client"
	"github.com/rcliao/easiergen/internal/config"
	"github.com/rcliao/easiergen/internal/editor"
	"github.com/rcliao/easiergen/internal/model"
	"github.com/rcliao/easiergen/internal/store"
	"github.com/rcliao/easiergen/internal/usage"
)

// draftKey is the KV slot holding the working draft between invocations.
const draftKey = "draft"

var (
	dbPath     string
	formatFlag string
	userFlag   string

	cfg = &config.Config{}
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "easiergen",
	Short: "Draft LinkedIn posts from the terminal",
	Long: "Generate post ideas, edit a three-part draft with Unicode bold/italic styling, " +
		"rewrite selections and keep up to 15 saved posts. SQLite-backed, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loaded, err := config.Load("")
		if err != nil {
			exitErr("config", err)
		}
		cfg = loaded
		cfg.Init()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $EASIERGEN_DB or ~/.easiergen/easiergen.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Signed-in user (default: $EASIERGEN_USER, empty for anonymous)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DBPath()
}

func currentUser() string {
	if userFlag != "" {
		return userFlag
	}
	return cfg.User
}

func requireUser() string {
	u := currentUser()
	if u == "" {
		exitErr("auth", fmt.Errorf("sign in with --user or EASIERGEN_USER"))
	}
	return u
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// loadSession restores the saved draft, or starts an empty one.
func loadSession(ctx context.Context, s usage.Slot) (*editor.Session, error) {
	opt := editor.WithLogger(log.Logger)
	raw, ok, err := s.Load(ctx, draftKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return editor.NewSession(model.Draft{}, opt), nil
	}
	var st editor.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable draft")
		return editor.NewSession(model.Draft{}, opt), nil
	}
	return editor.Restore(st, opt), nil
}

func saveSession(ctx context.Context, s usage.Slot, sess *editor.Session) error {
	b, err := json.Marshal(sess.State())
	if err != nil {
		return err
	}
	return s.Save(ctx, draftKey, string(b))
}

// output prints v as JSON, or the text form when --format text is set.
func output(v any, text func() string) {
	if formatFlag == "text" && text != nil {
		fmt.Println(text())
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	if client.IsSilent(err) {
		os.Exit(1)
	}
	if m := client.Message(err); m != "" && m != err.Error() {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", msg, m)
		log.Debug().Err(err).Msg(msg)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
