package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mverdon/cardwire/pkg/apdu"
	"github.com/mverdon/cardwire/pkg/card"
	"github.com/mverdon/cardwire/pkg/reader"
)

var (
	sendLe            int
	sendRetries       int
	sendDelay         time.Duration
	sendContinuations int
	sendTrace         bool
	sendExclusive     bool
)

var sendCmd = &cobra.Command{
	Use:   "send <reader> <apdu-hex>",
	Short: "Transmit a command APDU and print the assembled response",
	Long: `Transmit a raw command APDU (hex, spaces allowed) to the card in the
given reader. GET RESPONSE chaining is handled transparently and the
whole transaction is retried on transport failure.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := hex.DecodeString(strings.ReplaceAll(args[1], " ", ""))
		if err != nil {
			return fmt.Errorf("invalid APDU hex: %w", err)
		}

		mode := reader.ShareShared
		if sendExclusive {
			mode = reader.ShareExclusive
		}
		var trace apdu.Trace
		opts := []card.Option{
			card.WithRetry(sendRetries, sendDelay),
			card.WithMaxContinuations(sendContinuations),
		}
		if l := logger(); l != nil {
			opts = append(opts, card.WithLogger(l))
		}
		if sendTrace {
			opts = append(opts, card.WithTraceRecorder(func(t apdu.Trace) {
				trace = append(trace, t...)
			}))
		}

		c, err := pcsc.Connect(args[0], mode, reader.ProtocolAny, opts...)
		if err != nil {
			return err
		}
		defer c.Disconnect(card.LeaveCard)

		res, err := c.TransmitWithRetry(raw, sendLe)
		if err != nil {
			return err
		}

		if len(res.Data) > 0 {
			fmt.Printf("data: %X\n", res.Data)
		}
		sw := res.SW()
		swLine := fmt.Sprintf("status: %s", sw)
		if sw.IsSuccess() {
			color.Green(swLine)
		} else {
			color.Yellow(swLine)
		}
		if sendTrace && len(trace) > 0 {
			fmt.Println()
			fmt.Println(trace.Describe())
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().IntVar(&sendLe, "le", 256, "expected response data length (sizes the receive buffer)")
	sendCmd.Flags().IntVar(&sendRetries, "retries", card.DefaultMaxRetries, "transmit attempts before giving up")
	sendCmd.Flags().DurationVar(&sendDelay, "delay", card.DefaultRetryDelay, "delay between attempts")
	sendCmd.Flags().IntVar(&sendContinuations, "continuations", card.DefaultMaxContinuations, "GET RESPONSE follow-up budget")
	sendCmd.Flags().BoolVar(&sendTrace, "trace", false, "print every physical exchange, TLV-decoded where possible")
	sendCmd.Flags().BoolVar(&sendExclusive, "exclusive", false, "connect with exclusive share mode")
	rootCmd.AddCommand(sendCmd)
}
