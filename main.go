package main

import "github.com/corvran/adventure-gm/cmd"

func main() {
	cmd.Execute()
}
