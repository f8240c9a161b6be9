package main

import (
	"os"

	"github.com/jknam3036-svg/smart-news-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
