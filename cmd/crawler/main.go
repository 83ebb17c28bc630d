// jobpilot crawler service
//
// Polls configured job sources on a cron interval (or once via `crawl`),
// parses their content into normalized job records and upserts them into the
// shared Postgres store. See the cli package for the command surface.
package main

import (
	"fmt"
	"os"

	"jobpilot/crawler-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
