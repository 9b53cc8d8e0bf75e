package main

import "github.com/diogo/chatpanel/internal/commands"

func main() {
	commands.Execute()
}
