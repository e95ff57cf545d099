package main

import "fmt"

func printUsage() {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  rpal [-l] [-ast] [-st] [-cs] [--trace] [--max-steps=N] <file.rpal>")
	fmt.Fprintln(stderr, "  rpal run [-l] [-ast] [-st] [-cs] [--trace] [--max-steps=N] [target]")
	fmt.Fprintln(stderr, "  rpal repl [--trace] [--max-steps=N]")
	fmt.Fprintln(stderr, "  rpal deps")
	fmt.Fprintln(stderr, "  rpal version")
}
