package main

import (
	"os"

	sagestreamcmder "github.com/papercomputeco/sagestream/cmd/sagestream"
)

func main() {
	cmd := sagestreamcmder.NewSagestreamCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
