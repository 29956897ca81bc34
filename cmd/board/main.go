// Command board manages a local kanban board.
package main

import "github.com/mesh-intelligence/kanban/internal/cli"

func main() {
	cli.Execute()
}
