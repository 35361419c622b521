// Command cvforge rewrites .docx CVs from the command line.
package main

func main() {
	Execute()
}
