// Package main provides the entry point for the wordcrawler CLI.
package main

func main() {
	Execute()
}
