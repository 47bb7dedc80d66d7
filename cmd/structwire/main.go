package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/structwire/schema"
)

type options struct {
	logger     *zap.Logger
	schemaFile string
	typeName   string
	logFile    string
	little     bool
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "structwire",
		Short: "Decode and encode fixed-layout binary records",
		Long: `structwire reads a YAML or JSON schema definition and decodes, encodes
or describes records of one of its types.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.schemaFile, "schema", "s", "", "schema definition file (YAML or JSON)")
	pf.StringVarP(&opts.typeName, "type", "t", "", "type to use (default: last declared)")
	pf.BoolVar(&opts.little, "le", false, "little-endian byte order (default big-endian)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	pf.StringVar(&opts.logFile, "log-file", "", "also write JSON debug logs to a rotating file")

	root.AddCommand(
		newFormatCmd(opts),
		newDecodeCmd(opts),
		newEncodeCmd(opts),
		newWITCmd(opts),
		newInteractiveCmd(opts),
	)
	return root
}

func (o *options) order() binary.ByteOrder {
	if o.little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// load returns the selected type from the definition file.
func (o *options) load() (*schema.Schema, error) {
	if o.schemaFile == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	defs, err := schema.LoadDefinitionFile(o.schemaFile)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if o.typeName == "" {
		s := defs.Last()
		if s == nil {
			return nil, fmt.Errorf("%s declares no types", o.schemaFile)
		}
		return s, nil
	}
	s, ok := defs.Lookup(o.typeName)
	if !ok {
		return nil, fmt.Errorf("type %q not declared (have %s)", o.typeName, strings.Join(defs.Names(), ", "))
	}
	return s, nil
}
