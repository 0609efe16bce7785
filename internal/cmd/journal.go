package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/blueprint/internal/checkpoint"
)

// defaultJournalDir is used when execution.checkpoint_dir is not configured.
const defaultJournalDir = ".blueprint/journal"

func newJournalCmd() *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect run journals",
		Long: `Every execution records per-task progress in a journal named after
its operation id. Use these commands to see what a run did.`,
	}
	journalCmd.PersistentFlags().String("dir", "", "journal directory (default: execution.checkpoint_dir or "+defaultJournalDir+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runJournalList,
	}

	showCmd := &cobra.Command{
		Use:   "show <operation-id>",
		Short: "Show the task states of one run",
		Args:  cobra.ExactArgs(1),
		RunE:  runJournalShow,
	}

	journalCmd.AddCommand(listCmd, showCmd)
	return journalCmd
}

func journalManager(cmd *cobra.Command) (*checkpoint.Manager, error) {
	cc, err := commandContext(cmd)
	if err != nil {
		return nil, err
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cc.Config.Execution.CheckpointDir
	}
	if dir == "" {
		dir = defaultJournalDir
	}
	return checkpoint.NewManager(dir), nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	mgr, err := journalManager(cmd)
	if err != nil {
		return err
	}
	ids, err := mgr.List()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintf(w, "No runs recorded in %s\n", mgr.Dir())
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tPLAN\tSTATUS\tPROGRESS\tUPDATED")
	for _, id := range ids {
		state, err := mgr.Load(id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\tunreadable\t-\t-\n", id)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f%%\t%s\n",
			state.OperationID, state.PlanID, state.Status, state.Progress()*100,
			state.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	mgr, err := journalManager(cmd)
	if err != nil {
		return err
	}
	state, err := mgr.Load(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Operation: %s\n", state.OperationID)
	fmt.Fprintf(w, "Plan:      %s\n", state.PlanID)
	fmt.Fprintf(w, "Status:    %s\n", state.Status)
	fmt.Fprintf(w, "Progress:  %.0f%%\n", state.Progress()*100)
	if root, ok := state.GetMetadata("work_dir"); ok {
		fmt.Fprintf(w, "Workspace: %s\n", root)
	}
	fmt.Fprintln(w)

	ids := make([]string, 0, len(state.Tasks))
	for id := range state.Tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := state.Tasks[ids[i]], state.Tasks[ids[j]]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.Before(b.StartedAt)
		}
		return a.ID < b.ID
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tPHASE\tSTATUS\tATTEMPTS\tARTIFACTS\tERROR")
	for _, id := range ids {
		t := state.Tasks[id]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", t.ID, t.PhaseID, t.Status, t.Attempts, len(t.Artifacts), t.Error)
	}
	return tw.Flush()
}
