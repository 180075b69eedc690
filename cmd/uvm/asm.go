package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/edu-vm/uvm/asm"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] program.csv",
	Short: "assemble a program into binary bytecode.",
	Long: `Assemble a comma-separated program listing into the fixed-layout
	 binary bytecode stream the interpreter executes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		output, _ := cmd.Flags().GetString("output")
		withListing, _ := cmd.Flags().GetBool("listing")

		inf, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("%v: %v", args[0], err)
		}
		defer inf.Close()

		assembler := &asm.Assembler{}
		listing, err := assembler.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", args[0], err)
		}

		bin := listing.Program().Binary()

		if withListing {
			for n, line := range listing.Lines {
				fmt.Printf("%03d: %v\n", n, line.Instr)
			}
			fmt.Printf("bytes: % X\n", bin)
		}

		err = os.WriteFile(output, bin, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}

		log.Debugf("wrote %v (%d bytes)", output, len(bin))
	},
}

func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringP("output", "o", "a.bin", "specify output file.")
	asmCmd.Flags().Bool("listing", false, "print the assembled listing and bytes")
}
