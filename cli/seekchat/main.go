package main

import (
	"os"

	seekchatcmder "github.com/papercomputeco/seekchat/cmd/seekchat"
)

func main() {
	cmd := seekchatcmder.NewSeekchatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
