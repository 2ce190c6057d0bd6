package main

import (
	"os"

	"k8s.io/klog"

	"github.com/plutus-ledger/plutus/internal/commands"
)

func main() {
	err := commands.NewRootCommand().Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
