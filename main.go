// main.go - ChainIO Engine entry point

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func boilerPlate() {
	fmt.Printf("ChainIO Engine - hashing-chain I/O core model (build %d)\n", BuildID())
	fmt.Println("(c) 2025 - 2026 ChainIO Engine contributors, GPLv3 or later")
}

func main() {
	boilerPlate()

	var (
		scriptFile string
		monitor    bool
		noPump     bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&scriptFile, "script", "", "Run a Lua bring-up script and exit")
	flagSet.BoolVar(&monitor, "monitor", false, "Start the interactive register monitor")
	flagSet.BoolVar(&noPump, "no-pump", false, "Do not start the background transport pumps")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./chainio_engine [-script file.lua | -monitor] [-no-pump]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if scriptFile == "" && !monitor {
		// No mode selected: default to the monitor, like a bring-up bench.
		monitor = true
	}

	machine := NewMachine()
	if !noPump {
		machine.StartTransports()
		defer machine.StopTransports()
	}

	if scriptFile != "" {
		host := NewScriptHost(machine)
		defer host.Close()
		if err := host.RunFile(scriptFile); err != nil {
			fmt.Printf("Script error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	mon := NewChainMonitor(machine)
	if err := NewMonitorHost(mon).Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
