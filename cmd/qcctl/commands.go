package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/config"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/bitfantasy/nimo-qc/internal/qc/specparse"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	format  string
}

func (o *globalOptions) client() *foundryapi.Client {
	return foundryapi.NewClient(o.baseURL, o.timeout)
}

func (o *globalOptions) context(cmd *cobra.Command) context.Context {
	return foundryapi.WithToken(cmd.Context(), o.token)
}

func newRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "qcctl",
		Short:         "Foundry quality-inspection troubleshooting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", config.GetEnvOrDefault("FOUNDRY_API_URL", "http://localhost:3000"), "Foundry API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("QC_TOKEN"), "Bearer token forwarded to the foundry API")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	root.PersistentFlags().StringVarP(&opts.format, "format", "o", "table", "Output format: table or json")

	root.AddCommand(
		newParseCommand(opts),
		newPartsCommand(opts),
		newProgressCommand(opts),
		newVersionCommand(version),
	)
	return root
}

var parsers = map[string]func(string) any{
	"chemical": func(s string) any { return specparse.ParseChemicalComposition(s) },
	"tensile":  func(s string) any { return specparse.ParseTensileData(s) },
	"micro":    func(s string) any { return specparse.ParseMicrostructureData(s) },
	"hardness": func(s string) any { return specparse.ParseHardnessData(s) },
}

func newParseCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "parse <chemical|tensile|micro|hardness> [text]",
		Short:     "Parse a specification text",
		Long:      "Parse a specification text as stored on a master part. Without text, stdin is read.",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"chemical", "tensile", "micro", "hardness"},
		RunE: func(cmd *cobra.Command, args []string) error {
			parse, ok := parsers[args[0]]
			if !ok {
				return fmt.Errorf("unknown parser %q", args[0])
			}
			var text string
			if len(args) == 2 {
				text = args[1]
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}
			return renderRecord(cmd.OutOrStdout(), opts.format, parse(text))
		},
	}
}

func newPartsCommand(opts *globalOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List master parts, or show the parsed specs of one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parts, err := opts.client().ListMasterParts(opts.context(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if code == "" {
				if opts.format == "json" {
					return renderJSON(out, parts)
				}
				rows := make([]table.Row, 0, len(parts))
				for _, p := range parts {
					rows = append(rows, table.Row{p.PatternCode, p.PartName, p.MaterialGrade})
				}
				return renderTable(out, table.Row{"Pattern Code", "Part Name", "Grade"}, rows)
			}
			for _, p := range parts {
				if strings.EqualFold(p.PatternCode, code) {
					specs := service.ParseSpecs(p)
					if opts.format == "json" {
						return renderJSON(out, specs)
					}
					for _, rec := range []any{specs.Chemical, specs.Tensile, specs.Microstructure, specs.Hardness} {
						if err := renderRecord(out, opts.format, rec); err != nil {
							return err
						}
					}
					return nil
				}
			}
			return fmt.Errorf("master part %q not found", code)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Pattern code to show parsed specs for")
	return cmd
}

func newProgressCommand(opts *globalOptions) *cobra.Command {
	var (
		username   string
		department int
	)
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "List a user's pending trial assignments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return fmt.Errorf("--user is required")
			}
			progress, err := opts.client().GetProgress(opts.context(cmd), username)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return renderJSON(out, progress)
			}
			rows := make([]table.Row, 0, len(progress))
			for _, p := range progress {
				assigned := ""
				if department > 0 && gate.IsAssigned([]foundryapi.Progress{p}, username, department) {
					assigned = "yes"
				}
				rows = append(rows, table.Row{p.TrialID, entity.DepartmentName(p.DepartmentID), p.Username, p.ApprovalStatus, assigned})
			}
			return renderTable(out, table.Row{"Trial", "Department", "User", "Status", "Assigned"}, rows)
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Username to list assignments for")
	cmd.Flags().IntVar(&department, "department", 0, "Mark trials waiting at this department id")
	return cmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "qcctl %s\n", version)
		},
	}
}

// renderRecord prints a parsed record as key/value rows, in field order.
func renderRecord(w io.Writer, format string, rec any) error {
	if format == "json" {
		return renderJSON(w, rec)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var fields map[string]string
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(fields))
	for _, k := range recordKeys(rec) {
		rows = append(rows, table.Row{k, fields[k]})
	}
	return renderTable(w, table.Row{"Key", "Value"}, rows)
}

func recordKeys(rec any) []string {
	switch rec.(type) {
	case specparse.ChemicalComposition:
		return specparse.ChemicalKeys
	case specparse.Tensile:
		return []string{"tensileStrength", "yieldStrength", "elongation", "impactCold", "impactRoom"}
	case specparse.Microstructure:
		return []string{"nodularity", "pearlite", "carbide"}
	case specparse.Hardness:
		return []string{"surface", "core"}
	}
	return nil
}

func renderTable(w io.Writer, header table.Row, rows []table.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
