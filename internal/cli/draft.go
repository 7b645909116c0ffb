package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/editor"
	"github.com/rcliao/easiergen/internal/model"
)

type draftView struct {
	Title      string           `json:"title"`
	Text       string           `json:"text"`
	CTA        string           `json:"cta"`
	CharCount  int              `json:"char_count"`
	MaxChars   int              `json:"max_chars"`
	Exportable bool             `json:"exportable"`
	Selection  *model.Selection `json:"selection,omitempty"`
}

func newDraftView(sess *editor.Session) draftView {
	st := sess.State()
	return draftView{
		Title:      st.Draft.Title,
		Text:       st.Draft.Text,
		CTA:        st.Draft.CTA,
		CharCount:  st.Draft.CharCount(),
		MaxChars:   model.MaxExportChars,
		Exportable: st.Draft.Exportable(),
		Selection:  st.Selection,
	}
}

func (v draftView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n%s\n\n", v.Title, v.Text, v.CTA)
	fmt.Fprintf(&b, "%d/%d characters", v.CharCount, v.MaxChars)
	if !v.Exportable {
		b.WriteString(" (too long to copy)")
	}
	if v.Selection != nil {
		fmt.Fprintf(&b, "\nselection: %s [%d,%d)", v.Selection.Field, v.Selection.Start, v.Selection.End)
	}
	return b.String()
}

// editDraft loads the saved session, runs fn, saves the session and prints
// the resulting draft.
func editDraft(cmd *cobra.Command, msg string, fn func(ctx context.Context, sess *editor.Session) error) {
	ctx := cmd.Context()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := loadSession(ctx, s)
	if err != nil {
		exitErr("load draft", err)
	}
	if err := fn(ctx, sess); err != nil {
		exitErr(msg, err)
	}
	if err := saveSession(ctx, s, sess); err != nil {
		exitErr("save draft", err)
	}

	v := newDraftView(sess)
	output(v, v.String)
}

func init() {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Show or change the working draft",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the draft and its character count",
		Run: func(cmd *cobra.Command, args []string) {
			editDraft(cmd, "show", func(context.Context, *editor.Session) error { return nil })
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Replace one or more fields",
		Run:   runDraftSet,
	}
	set.Flags().String("title", "", "Title")
	set.Flags().String("text", "", "Body text")
	set.Flags().String("cta", "", "Call to action")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Start over with an empty draft",
		Run: func(cmd *cobra.Command, args []string) {
			editDraft(cmd, "clear", func(_ context.Context, sess *editor.Session) error {
				sess.ApplySuggestion(model.Suggestion{})
				return nil
			})
		},
	}

	cmd.AddCommand(show, set, clearCmd)
	RootCmd.AddCommand(cmd)
}

func runDraftSet(cmd *cobra.Command, args []string) {
	flags := map[string]model.Field{"title": model.FieldTitle, "text": model.FieldText, "cta": model.FieldCTA}
	changed := false
	for name := range flags {
		changed = changed || cmd.Flags().Changed(name)
	}
	if !changed {
		exitErr("set", fmt.Errorf("at least one of --title, --text or --cta is required"))
	}

	editDraft(cmd, "set", func(_ context.Context, sess *editor.Session) error {
		for name, field := range flags {
			if !cmd.Flags().Changed(name) {
				continue
			}
			v, _ := cmd.Flags().GetString(name)
			if err := sess.SetField(field, v); err != nil {
				return err
			}
		}
		return nil
	})
}
