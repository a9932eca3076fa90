// Command eventsim runs discrete event simulation scenarios.
package main

import "github.com/sarchlab/eventsim/eventsim/cmd"

func main() {
	cmd.Execute()
}
