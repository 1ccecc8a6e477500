package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drfirst/go-edi/internal/x12/generate"
)

func (c *cli) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate outbound X12 transactions",
	}
	cmd.AddCommand(c.generate270Cmd(), c.generate276Cmd())
	return cmd
}

func (c *cli) generate270Cmd() *cobra.Command {
	var (
		payerID string
		patient generate.Patient
		member  string
		gender  string
		group   string
	)

	cmd := &cobra.Command{
		Use:   "270",
		Short: "Generate a 270 eligibility inquiry",
		Example: `  edictl generate 270 --payer 60054 --first JOHN --last DOE \
    --dob 1980-01-15 --member W123456789`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			payers, err := cfg.Directory()
			if err != nil {
				return err
			}
			pc, err := payers.MustLookup(payerID)
			if err != nil {
				return err
			}

			patient.MemberID = optional(member)
			patient.Gender = optional(gender)
			patient.GroupNumber = optional(group)

			x12, err := generate.New(cfg.Envelope()).Eligibility270(patient, pc, cfg.Inquiry().Provider)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), x12)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&payerID, "payer", "", "payer id from the directory")
	f.StringVar(&patient.FirstName, "first", "", "subscriber first name")
	f.StringVar(&patient.LastName, "last", "", "subscriber last name")
	f.StringVar(&patient.DateOfBirth, "dob", "", "subscriber date of birth (YYYY-MM-DD)")
	f.StringVar(&member, "member", "", "member id")
	f.StringVar(&gender, "gender", "", "gender (M, F or U)")
	f.StringVar(&group, "group", "", "group number")
	_ = cmd.MarkFlagRequired("payer")
	return cmd
}

func (c *cli) generate276Cmd() *cobra.Command {
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "276 <inquiry.json>",
		Short: "Generate a 276 claim status inquiry from a JSON claim inquiry",
		Long: `Reads a claim status inquiry as JSON (use - for stdin) and prints the
276. With --validate the inquiry is checked and the report printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var inq generate.ClaimInquiry
			if err := json.Unmarshal(data, &inq); err != nil {
				return fmt.Errorf("failed to decode claim inquiry: %w", err)
			}

			if validateOnly {
				return printJSON(cmd.OutOrStdout(), generate.ValidateClaimInquiry(inq))
			}

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			x12, err := generate.New(cfg.Envelope()).ClaimStatus276(inq)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), x12)
			return nil
		},
	}
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "print a validation report instead of generating")
	return cmd
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
