package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/notes"
)

var (
	notesUser    string
	noteTitle    string
	noteContent  string
	noteTopic    string
	noteArticle  string
	noteTags     []string
	notesJSONOut bool
)

// notesCmd represents the notes command
var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes stored in the configured note store",
	Long: `Manage notes kept alongside articles. Notes are stored per user in the
store configured under store.driver (sqlite or memory).`,
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := notes.New(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		list, err := store.List(cmd.Context(), notesUser, model.NoteFilter{Topic: noteTopic, ArticleID: noteArticle})
		if err != nil {
			return err
		}
		if notesJSONOut {
			return writeJSON(cmd.OutOrStdout(), "-", list)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notes.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTOPIC\tUPDATED\tTITLE")
		for _, n := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Topic, n.UpdatedAt.Format("2006-01-02 15:04"), n.Title)
		}
		return tw.Flush()
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note",
	Example: `  newsmania notes add --title "Follow up" --content "Check the budget numbers" --topic politics
  newsmania notes add --content "Quote from the mayor" --article general-0-3f2a --tag city --tag quotes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := notes.New(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		created, err := store.Create(cmd.Context(), model.Note{
			UserID:    notesUser,
			Title:     noteTitle,
			Content:   noteContent,
			Topic:     noteTopic,
			ArticleID: noteArticle,
			Tags:      noteTags,
		})
		if err != nil {
			return err
		}
		if notesJSONOut {
			return writeJSON(cmd.OutOrStdout(), "-", created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created note %s\n", created.ID)
		return nil
	},
}

var notesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := notes.New(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Delete(cmd.Context(), notesUser, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted note %s\n", args[0])
		return nil
	},
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesRmCmd)

	notesCmd.PersistentFlags().StringVar(&notesUser, "user", defaultUser(), "note owner")
	notesCmd.PersistentFlags().BoolVar(&notesJSONOut, "json", false, "print JSON")

	notesListCmd.Flags().StringVar(&noteTopic, "topic", "", "only notes with this topic")
	notesListCmd.Flags().StringVar(&noteArticle, "article", "", "only notes attached to this article ID")

	notesAddCmd.Flags().StringVar(&noteTitle, "title", "", "note title")
	notesAddCmd.Flags().StringVar(&noteContent, "content", "", "note body")
	notesAddCmd.Flags().StringVar(&noteTopic, "topic", "", "topic (default general)")
	notesAddCmd.Flags().StringVar(&noteArticle, "article", "", "attach to an article ID")
	notesAddCmd.Flags().StringArrayVar(&noteTags, "tag", nil, "tag (repeatable)")
}
