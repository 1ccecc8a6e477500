package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drfirst/go-edi/internal/config"
)

// cli holds the flags shared by every command
type cli struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "edictl",
		Short: "HIPAA X12 toolbox for the EDI gateway",
		Long:  `edictl generates 270 and 276 inquiries, decodes inbound 271, 277,
835 and 999 files (raw or inside a CORE SOAP response), lists the payer
directory and prepares the database schema and Redpanda topics.

Configuration is read from --config, then EDI_* environment variables.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: $EDI_CONFIG)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	_ = c.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = c.v.BindEnv("config", config.EnvPrefix+"_CONFIG")

	root.AddCommand(
		c.generateCmd(),
		c.parseCmd(),
		c.unwrapCmd(),
		c.payersCmd(),
		c.migrateCmd(),
		c.topicsCmd(),
	)
	return root
}

// loadConfig loads the gateway configuration named by --config or EDI_CONFIG
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := c.v.GetString("config")
	if c.verbose && path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", path)
	}
	return config.Load(path)
}

// readInput reads the named file, or stdin for "-"
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
