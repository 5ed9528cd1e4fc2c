package main

import (
	"os"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/rx/internal/runner"
)

func main() {
	opts := runner.ParseFlags()

	r, err := runner.New(opts)
	if err != nil {
		gologger.Fatal().Msgf("%s", err)
	}

	matched, err := r.Run(os.Stdout)
	if err != nil {
		gologger.Fatal().Msgf("%s", err)
	}
	gologger.Verbose().Msgf("%d matching lines", matched)
	if matched == 0 {
		os.Exit(1)
	}
}
