package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-community-filter/pkg/store"
)

func init() {
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect detection runs saved in the store",
	Long: `Inspect detection runs saved in the SQLite store configured by store.path
(or COMMFILTER_STORE_PATH).`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns()
		if err != nil {
			return err
		}
		if !humanOutput {
			if runs == nil {
				runs = []store.Run{}
			}
			return outputJSON(runs)
		}
		if len(runs) == 0 {
			outputHuman("No stored runs\n")
			return nil
		}
		outputHuman("%-36s  %-12s %8s  %s\n", "ID", "DETECTOR", "NODES", "CREATED")
		for _, r := range runs {
			outputHuman("%-36s  %-12s %8d  %s\n", r.ID, r.Detector, r.NumNodes, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the community assignment of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		run, a, err := db.LoadRun(args[0])
		if err != nil {
			return err
		}
		if !humanOutput {
			return outputJSON(map[string]any{"run": run, "assignment": a})
		}
		outputHuman("Run %s (%s, %d nodes)\n", run.ID, run.Detector, run.NumNodes)
		ids := make([]string, 0, len(a))
		for id := range a {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			outputHuman("%s %d\n", id, a[id])
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteRun(args[0]); err != nil {
			return err
		}
		if humanOutput {
			outputHuman("Deleted run %s\n", args[0])
			return nil
		}
		return outputJSON(map[string]string{"deleted": args[0]})
	},
}

func openStore() (*store.DB, error) {
	_, settings, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if settings.StorePath == "" {
		return nil, fmt.Errorf("no store configured: set store.path in the config file or COMMFILTER_STORE_PATH")
	}
	return store.Open(settings.StorePath)
}
