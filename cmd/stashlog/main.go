package main

import (
	"os"

	"github.com/stashlog/stashlog/webservice"
)

func main() {
	if err := webservice.Run(); err != nil {
		os.Exit(1)
	}
}
