package main

import (
	"clubscraper/cmd/clubscraper/commands"
	"clubscraper/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	commands.Execute(ctx)
}
