package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mverdon/cardwire/pkg/card"
)

var waitTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status <reader>",
	Short: "Show the card presence state of a reader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := pcsc.GetStatus(args[0])
		if err != nil {
			return err
		}
		printStatus(st)
		return nil
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait <reader>",
	Short: "Wait for a card event on a reader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := pcsc.WaitForCard(args[0], waitTimeout)
		if err != nil {
			return err
		}
		printStatus(st)
		return nil
	},
}

func printStatus(st card.Status) {
	flag := func(name string, on bool) string {
		if on {
			return color.GreenString("%s: yes", name)
		}
		return color.New(color.Faint).Sprintf("%s: no", name)
	}
	fmt.Println(flag("present", st.Present))
	fmt.Println(flag("empty", st.Empty))
	fmt.Println(flag("mute", st.Mute))
	if len(st.ATR) > 0 {
		fmt.Printf("atr: %X\n", st.ATR)
	}
}

func init() {
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 30*time.Second, "how long to wait for a card event")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(waitCmd)
}
