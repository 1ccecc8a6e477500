package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/soap"
	"github.com/drfirst/go-edi/internal/x12"
)

func (c *cli) parseCmd() *cobra.Command {
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Decode an inbound 271, 277, 835 or 999 file as JSON",
		Long: `Detects the transaction type of a raw X12 file or a CORE SOAP
response and prints the decoded document. Use - for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := inquiry.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", inquiry.Classify(err), err)
			}
			if summaryOnly && doc.Summary != nil {
				return printJSON(cmd.OutOrStdout(), doc.Summary)
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print only the eligibility summary for a 271")
	return cmd
}

func (c *cli) unwrapCmd() *cobra.Command {
	var perLine bool

	cmd := &cobra.Command{
		Use:   "unwrap <file>",
		Short: "Print the X12 payload of a SOAP response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			payload, err := soap.Unwrap(data)
			if err != nil {
				return err
			}
			if !perLine {
				fmt.Fprintln(cmd.OutOrStdout(), payload)
				return nil
			}
			for _, seg := range x12.ParseSegments(payload) {
				fmt.Fprintln(cmd.OutOrStdout(), seg.String()+x12.SegmentTerminator)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&perLine, "segments", false, "print one segment per line")
	return cmd
}
