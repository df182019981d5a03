package debug

var cmdList = Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Summary: "Lists the whole instruction listing",
	Exec:    listExec,
}

func listExec(args []string) {
	if !requireLoaded() {
		return
	}

	snap := sess.Snapshot()
	printListing(snap.Listing, len(snap.Listing))
}
