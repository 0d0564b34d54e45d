// Command calky manages calendars stored as iCalendar blobs in a remote
// object store. It also embeds a development blob store (`calky serve`) so
// the whole stack can run locally.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
