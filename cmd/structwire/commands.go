package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/structwire/codec"
)

func newFormatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Print the wire format and byte length of a type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			color := styled(w)
			fmt.Fprintf(w, "%s %s\n", render(titleStyle, s.Name, color), render(typeStyle, s.Format().String(), color))
			fmt.Fprintf(w, "bytes:  %d\n", s.ByteLength())
			fmt.Fprintf(w, "values: %d\n", s.ValueCount())
			if s.IsBitfield() {
				for _, e := range s.Bits.Entries {
					fmt.Fprintf(w, "  %s bits %v\n", e.Name, e.Indices)
				}
			}
			return nil
		},
	}
}

func newWITCmd(opts *options) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "wit",
		Short: "Print the type as a WIT record or flags declaration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), s.WITText(name))
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "WIT type name (default: kebab-case type name)")
	return cmd
}

func newDecodeCmd(opts *options) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "decode [hex bytes...]",
		Short: "Decode a record and print it as YAML",
		Example: `  structwire decode -s frames.yaml 0f f0 ff ff
  structwire decode -s frames.yaml --le --in capture.bin.zst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			data, err := readRecordInput(args, in, cmd.InOrStdin())
			if err != nil {
				return err
			}

			rec := codec.NewRecord(s)
			if err := rec.Decode(data, opts.order()); err != nil {
				return err
			}
			out, err := recordYAML(rec)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if styled(w) {
				out = resultStyle.Render(out)
			}
			_, err = io.WriteString(w, out)
			return err
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "read a binary capture (zstd or gzip compressed, - for stdin)")
	return cmd
}

func newEncodeCmd(opts *options) *cobra.Command {
	var (
		values string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode field values from a YAML or JSON document",
		Long: `encode starts from the type's defaults, applies the values document
(a mapping of field names, as printed by decode) and prints the bytes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}

			rec := codec.NewRecord(s)
			if values != "" {
				m, err := readValues(values, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if err := rec.Fill(m); err != nil {
					return err
				}
			}
			data, err := rec.Encode(opts.order())
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				return nil
			}
			w := cmd.OutOrStdout()
			_, err = io.WriteString(w, hexdump(data, styled(w)))
			return err
		},
	}
	cmd.Flags().StringVar(&values, "values", "", "values document (YAML or JSON, - for stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write raw bytes to a file instead of a hex dump")
	return cmd
}

func readValues(path string, stdin io.Reader) (map[string]any, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open values: %w", err)
		}
		defer f.Close()
		r = f
	}

	var m map[string]any
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return m, nil
}

func newInteractiveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Decode hex interactively as you type",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			return runInteractive(s, opts.little)
		},
	}
}
