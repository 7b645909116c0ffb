package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/easiergen/internal/model"
	"github.com/rcliao/easiergen/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage saved posts",
		Long:  fmt.Sprintf("Save the draft as a post and manage saved posts. Each user can keep up to %d.", store.PostLimit),
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Save the draft as a new post, or update one with --id",
		Run:   runPostsSave,
	}
	save.Flags().String("id", "", "Update this post instead of creating one")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved posts, newest first",
		Run:   runPostsList,
	}
	list.Flags().IntP("limit", "l", store.PostLimit, "Max results")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a saved post",
		Args:  cobra.ExactArgs(1),
		Run:   runPostsGet,
	}
	get.Flags().Bool("load", false, "Also load the post into the draft")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a saved post",
		Args:  cobra.ExactArgs(1),
		Run:   runPostsRm,
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Export saved posts as JSON",
		Run:   runPostsExport,
	}

	imp := &cobra.Command{
		Use:   "import",
		Short: "Import posts from JSON on stdin",
		Long:  "Import posts from JSON on stdin. Expects the format produced by export. Stops at the post limit.",
		Run:   runPostsImport,
	}

	cmd.AddCommand(save, list, get, rm, export, imp)
	RootCmd.AddCommand(cmd)
}

func runPostsSave(cmd *cobra.Command, args []string) {
	user := requireUser()
	id, _ := cmd.Flags().GetString("id")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := loadSession(cmd.Context(), s)
	if err != nil {
		exitErr("load draft", err)
	}
	draft := sess.Draft()
	if draft.CharCount() == 0 {
		exitErr("save", fmt.Errorf("draft is empty"))
	}

	post, err := s.SavePost(cmd.Context(), store.SavePostParams{ID: id, UserID: user, Draft: draft})
	if err != nil {
		exitErr("save", err)
	}
	output(post, func() string { return fmt.Sprintf("saved %s", post.ID) })
}

func runPostsList(cmd *cobra.Command, args []string) {
	user := requireUser()
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	posts, err := s.ListPosts(cmd.Context(), store.ListPostsParams{UserID: user, Limit: limit})
	if err != nil {
		exitErr("list", err)
	}
	output(posts, func() string {
		var b strings.Builder
		fmt.Fprintf(&b, "%d/%d posts\n", len(posts), store.PostLimit)
		for _, p := range posts {
			fmt.Fprintf(&b, "%s  %s  %s\n", p.ID, p.UpdatedAt.Local().Format("2006-01-02 15:04"), p.Title)
		}
		return strings.TrimRight(b.String(), "\n")
	})
}

func runPostsGet(cmd *cobra.Command, args []string) {
	user := requireUser()
	load, _ := cmd.Flags().GetBool("load")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	post, err := s.GetPost(cmd.Context(), user, args[0])
	if err != nil {
		exitErr("get", err)
	}

	if load {
		sess, err := loadSession(cmd.Context(), s)
		if err != nil {
			exitErr("load draft", err)
		}
		sess.ApplySuggestion(model.Suggestion{Title: post.Title, Text: post.Text, CTA: post.CTA})
		if err := saveSession(cmd.Context(), s, sess); err != nil {
			exitErr("save draft", err)
		}
	}

	output(post, func() string { return fmt.Sprintf("%s\n\n%s\n\n%s", post.Title, post.Text, post.CTA) })
}

func runPostsRm(cmd *cobra.Command, args []string) {
	user := requireUser()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RmPost(cmd.Context(), user, args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
}

func runPostsExport(cmd *cobra.Command, args []string) {
	user := requireUser()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	posts, err := s.ExportPosts(cmd.Context(), user)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(posts, "", "  ")
	fmt.Println(string(b))
}

func runPostsImport(cmd *cobra.Command, args []string) {
	user := requireUser()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var posts []model.SavedPost
	if err := json.Unmarshal(data, &posts); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.ImportPosts(cmd.Context(), user, posts)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
