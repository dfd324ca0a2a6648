// Package main is the entry point for the loadmetrics CLI tool, which scores
// athlete training sessions against their match-day reference group.
package main

import "github.com/pable/go-load-metrics/cmd"

func main() {
	cmd.Execute()
}
