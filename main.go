package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if prevANSI, err := terminalANSI(true); err == nil && !prevANSI {
		defer terminalANSI(prevANSI)
	}

	scanner := newScanner()
	dirs := scanner.options.ParseArgs()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		fmt.Println("\nReceived", sig)
		fmt.Printf("\n%s\n", scanner.totals.PrettyFormat(scanner.options.Verb()))
		scanner.Exit(1)
	}()

	err := scanner.Scan(dirs...)

	fmt.Print("\033[2K")
	if listing := scanner.table.PrettyFormat(); listing != "" {
		fmt.Printf("%s\n", listing)
	}

	if err == nil {
		err = scanner.Export()
	}

	fmt.Printf("\n%s\n", scanner.totals.PrettyFormat(scanner.options.Verb()))

	if rerr := writeReport(scanner.options.JsonReport, scanner.table.Groups(), scanner.table.unmatched); rerr != nil {
		fmt.Println("Unable to write JSON report:", rerr)
	}

	if err != nil {
		fmt.Printf("Finished with error: %s\n", err)
		os.Exit(1)
	}
}
