// Package main is the entry point for the chesstime dashboard.
package main

import "github.com/mkarren/chesstime/internal/cli"

func main() {
	cli.Execute()
}
