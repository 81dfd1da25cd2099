package main

import "github.com/pfrederiksen/sportsref-scraper/internal/cli"

func main() {
	cli.Execute()
}
