package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/PrincetonUniversity/leaderswarm/hdf5"
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <file.h5>",
		Short: "Summarize a recorded trajectory frame by frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			groupDist, _ := cmd.Flags().GetFloat64("group-dist")
			every, _ := cmd.Flags().GetInt("every")
			if every < 1 {
				return fmt.Errorf("--every must be at least 1, got %d", every)
			}

			l, err := hdf5.NewLoader(args[0], "agents")
			if err != nil {
				return err
			}
			defer checkClose(&err, l)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "frame\tagents\tleaders\tgroups\tspeed\twingbeat\t")
			var frames []hdf5.Frame
			for k := 0; k < l.Len(); k++ {
				if err := l.Load(&frames); err != nil {
					return fmt.Errorf("frame %d: %w", k, err)
				}
				if k%every != 0 && k != l.Len()-1 {
					continue
				}
				st := hdf5.Stats(frames, groupDist)
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2f\t%.2f\t\n",
					k, st.Agents, st.Leaders, st.Groups, st.MeanSpeed, st.MeanWingBeat)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64("group-dist", 30, "maximum gap between agents of the same group")
	cmd.Flags().Int("every", 100, "print one frame out of every")
	return cmd
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
