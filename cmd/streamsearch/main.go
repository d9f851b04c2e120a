package main

import (
	"github.com/farhapartex/stream-search/internal/command"
	"github.com/farhapartex/stream-search/internal/command/search"
)

var version = "dev"

func main() {
	command.Main(
		"streamsearch",
		version,
		"Search live Twitch streams from the terminal",
		search.Search(),
	)
}
