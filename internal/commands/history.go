package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/serenelabs/serene/internal/config"
	"github.com/serenelabs/serene/internal/history"
	"github.com/serenelabs/serene/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the local session cache",
	Long:  `View and manage your locally cached conversations.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached sessions",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a cached session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the cache from the backend",
	RunE:  runHistorySync,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a cached session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole cache",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySyncCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No cached sessions. Run 'serene history sync' to fetch them.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tUPDATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t--------\t-------")

	for _, sess := range sessions {
		updated := sess.UpdatedAt.Format("2006-01-02 15:04")
		title := sess.Title
		if len(title) > 40 {
			title = title[:40] + "..."
		}
		fav := ""
		if ok, _ := store.IsFavorite(sess.ID); ok {
			fav = " ★"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s%s\t%d\t%s\n",
			sess.ID, title, fav, len(sess.Messages), updated)
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	sess, err := store.Get(args[0])
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	fmt.Printf("ID: %s\n", sess.ID)
	fmt.Printf("Title: %s\n", sess.Title)
	fmt.Printf("Updated: %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Messages: %d\n", len(sess.Messages))
	fmt.Println()

	for i, msg := range sess.Messages {
		role := "You"
		if msg.Role == models.RoleAssistant {
			role = "Serene"
		}
		fmt.Printf("[%d] %s (%s):\n", i+1, role, msg.Timestamp.Format("15:04"))

		content := msg.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Printf("  %s\n\n", content)
	}

	return nil
}

func runHistorySync(cmd *cobra.Command, args []string) error {
	cfg, _ := config.LoadConfig()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	spin := newSpinner("Syncing sessions")
	spin.start()

	summaries, err := client.ListSessions()
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Sync failed"))
		return fmt.Errorf("sync failed: %w", err)
	}

	synced := 0
	for _, summary := range summaries {
		detail, err := client.GetSession(summary.ID)
		if err != nil {
			continue
		}
		if err := store.Put(detail); err != nil {
			continue
		}
		synced++
	}

	if err := store.Refresh(summaries); err != nil {
		spin.stopWithError()
		return fmt.Errorf("failed to update cache index: %w", err)
	}

	spin.stopWithSuccess(fmt.Sprintf("Synced %d of %d sessions", synced, len(summaries)))
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	if err := store.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	fmt.Printf("Deleted cached session: %s\n", args[0])
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Println("All cached sessions deleted.")
	return nil
}
