package main

import (
	"xorkevin.dev/forgeresult/cmd"
)

func main() {
	cmd.New().Execute()
}
