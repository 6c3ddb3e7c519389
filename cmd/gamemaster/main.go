// Command gamemaster plays a text adventure with a language model game master.
package main

import "github.com/diogo/gamemaster/internal/commands"

func main() {
	commands.Execute()
}
