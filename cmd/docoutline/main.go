// Command docoutline extracts document outlines and ranks sections for a
// persona and task from the command line.
package main

func main() {
	execute()
}
