// Package main provides the recast CLI for rule-driven document rewriting.
package main

func main() {
	Execute()
}
