package main

/*
shortbred finds short marker sequences that identify protein families, and
merges per-sample abundance tables.
*/

import (
	"github.com/grailbio/base/grail"
	"github.com/grailbio/shortbred/cmd/shortbred/cmd"
)

func main() {
	// cmd.Run exits the process, so the shutdown func is not deferred.
	shutdown := grail.Init()
	cmd.Run()
	shutdown()
}
