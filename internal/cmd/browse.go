package cmd

import (
	"github.com/Iron-Ham/taglog/internal/config"
	"github.com/Iron-Ham/taglog/internal/viewer"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse FILE",
	Short: "Browse a log file interactively",
	Long: `Open an interactive viewer over a log file. Entries are grouped by feature
or module; switch groups with [ and ], the axis with tab and the minimum
level with L. Press / to search messages and function names.

With --follow, entries appended to the file (including after rotation)
appear as they are written.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

var (
	browseFollow bool
	browseFilter entryFilter
)

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().BoolVarP(&browseFollow, "follow", "f", false, "Stream new entries as they are written")
	addFilterFlags(browseCmd, &browseFilter)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	path := args[0]

	// Start following before the initial read so no entry falls in between.
	var follower *viewer.Follower
	if browseFollow {
		var err error
		if follower, err = viewer.NewFollower(path); err != nil {
			return err
		}
		defer func() { _ = follower.Close() }()
	}

	entries, err := loadEntries(path, &browseFilter)
	if err != nil {
		return err
	}

	return viewer.Browse(cmd.Context(), entries, viewer.BrowseOptions{
		Follower: follower,
		Plain:    !config.Get().Viewer.Color,
	})
}
