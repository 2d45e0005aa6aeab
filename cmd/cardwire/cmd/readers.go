package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var readersCmd = &cobra.Command{
	Use:   "readers",
	Short: "List attached smart card readers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		readers, err := pcsc.List()
		if err != nil {
			return err
		}
		if len(readers) == 0 {
			fmt.Println("No smart card readers found.")
			return nil
		}
		for i, name := range readers {
			fmt.Printf("%s %s\n", color.CyanString("[%d]", i), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readersCmd)
}
