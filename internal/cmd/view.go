package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/taglog/internal/config"
	"github.com/Iron-Ham/taglog/internal/viewer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Show log entries grouped by feature or module",
	Long: `Print one section per feature (or module) with the tags on the other
axis, a level histogram and the newest entries of the group.

Examples:
  # Every feature, 50 newest entries each
  taglog view app.log

  # One module, 10 entries, no colour
  taglog view app.log --by module --tag database -n 10 --no-color`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var (
	viewBy      string
	viewTag     string
	viewLimit   int
	viewWidth   int
	viewNoColor bool
	viewFilter  entryFilter
)

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVar(&viewBy, "by", "feature", "Group by feature or module")
	viewCmd.Flags().StringVar(&viewTag, "tag", "", "Show only this feature or module")
	viewCmd.Flags().IntVarP(&viewLimit, "limit", "n", 0, "Newest entries per group (default from config)")
	viewCmd.Flags().IntVar(&viewWidth, "width", -1, "Truncate lines to this width (0 disables, default terminal width)")
	viewCmd.Flags().BoolVar(&viewNoColor, "no-color", false, "Disable styled output")
	addFilterFlags(viewCmd, &viewFilter)
}

func runView(cmd *cobra.Command, args []string) error {
	entries, err := loadEntries(args[0], &viewFilter)
	if err != nil {
		return err
	}

	cfg := config.Get()
	limit := viewLimit
	if limit <= 0 {
		limit = cfg.Viewer.MaxEntries
	}

	var opts []viewer.Option
	if viewNoColor || !cfg.Viewer.Color || !isTerminal(cmd.OutOrStdout()) {
		opts = append(opts, viewer.WithPlain())
	}
	opts = append(opts, viewer.WithWidth(resolveWidth(cmd, viewWidth, cfg.Viewer.Width)))

	v := viewer.NewViewer(cmd.OutOrStdout(), opts...)
	switch viewBy {
	case "feature":
		return v.FeatureView(entries, viewTag, limit)
	case "module":
		return v.ModuleView(entries, viewTag, limit)
	default:
		return fmt.Errorf("invalid --by value %q (expected feature or module)", viewBy)
	}
}

// resolveWidth picks the truncation width: an explicit flag, then the
// config, then the terminal width. Output that is not a terminal is never
// truncated unless asked.
func resolveWidth(cmd *cobra.Command, flagWidth, configWidth int) int {
	if flagWidth >= 0 {
		return flagWidth
	}
	if configWidth > 0 {
		return configWidth
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			return width
		}
	}
	return 0
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
