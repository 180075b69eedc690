package main

import (
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/edu-vm/uvm/dump"
	"github.com/edu-vm/uvm/vm"
)

// Front-end defaults. The core applies none; these match the sizes the
// original tools assumed.
const (
	DEFAULT_REGISTERS = 32
	DEFAULT_MEMORY    = 1 << 16
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program.bin",
	Short: "execute binary bytecode and dump the final state.",
	Long: `Execute a binary program against a freshly zeroed register file and
	 memory, then write the final state as an XML dump document.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		registers, _ := cmd.Flags().GetInt("registers")
		memory, _ := cmd.Flags().GetInt("memory")
		output, _ := cmd.Flags().GetString("output")
		window, _ := cmd.Flags().GetString("range")

		bin, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("%v: %v", args[0], err)
		}

		machine, err := vm.Execute(bin, vm.Config{Registers: registers, Memory: memory})
		if err != nil {
			log.Fatalf("%v: %v", args[0], err)
		}

		var doc *dump.Document
		if window == "" {
			doc = dump.New(machine.Register, machine.Memory)
		} else {
			var lo, hi int
			lo, hi, err = parseRange(window)
			if err == nil {
				doc, err = dump.NewRange(machine.Register, machine.Memory, lo, hi)
			}
			if err != nil {
				log.Fatalf("range %v: %v", window, err)
			}
		}

		if output == "-" {
			_, err = doc.WriteTo(os.Stdout)
		} else {
			var ouf *os.File
			ouf, err = os.Create(output)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			defer ouf.Close()
			_, err = doc.WriteTo(ouf)
		}
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	},
}

// parseRange parses an inclusive "lo-hi" memory window.
func parseRange(s string) (lo, hi int, err error) {
	first, second, found := strings.Cut(s, "-")
	if !found {
		err = dump.ErrRange
		return
	}

	lo, err = strconv.Atoi(first)
	if err != nil {
		return
	}
	hi, err = strconv.Atoi(second)

	return
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("output", "o", "-", "dump output file ('-' for stdout)")
	runCmd.Flags().String("range", "", "inclusive memory dump range lo-hi (default: all)")
	runCmd.Flags().Int("registers", DEFAULT_REGISTERS, "size of the register file")
	runCmd.Flags().Int("memory", DEFAULT_MEMORY, "memory size in cells")
}
