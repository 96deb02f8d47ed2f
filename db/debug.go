package db

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// PrintEventsCLI writes the newest events in the journal at dbPath as a table.
func PrintEventsCLI(dbPath string, limit int, out io.Writer) error {
	dbConn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	events, err := RecentEvents(dbConn, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OCCURRED\tKIND\tSLEEP")
	for _, e := range events {
		sleep := "-"
		if e.SleepDuration > 0 {
			sleep = e.SleepDuration.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.OccurredAt.Local().Format(time.DateTime), e.Kind, sleep)
	}
	return tw.Flush()
}

func PruneEventsCLI(dbPath string, olderThan time.Duration) (int64, error) {
	dbConn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer dbConn.Close()

	return DeleteEventsBefore(dbConn, time.Now().Add(-olderThan))
}
