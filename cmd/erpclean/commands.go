package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/erpclean/erpclean-go/internal/app"
	"github.com/erpclean/erpclean-go/pkg/erpclean"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	callData     string
	callParams   []string
	callFiles    []string
	logoOut      string
	historyLimit int
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the operations the API client knows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printOperations(cmd.OutOrStdout(), erpclean.Operations())
	},
}

var callCmd = &cobra.Command{
	Use:   "call <operation>",
	Short: "Run a catalog operation",
	Example: `  erpclean call list-persons --param page=2
  erpclean call create-company --data company.json
  erpclean call import-nfe-xml --file xmls=nota1.xml --file xmls=nota2.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := erpclean.OperationByName(args[0]); !ok {
			return fmt.Errorf("unknown operation %q (see erpclean operations)", args[0])
		}
		data, err := loadPayload(callData, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if data, err = attachFiles(data, callFiles); err != nil {
			return err
		}
		params, err := parseParams(callParams)
		if err != nil {
			return err
		}
		return withRunner(func(r *app.Runner) error {
			resp, err := r.Call(cmd.Context(), args[0], data, params)
			return report(cmd, resp, err)
		})
	},
}

var cnpjCmd = &cobra.Command{
	Use:   "cnpj <cnpj>",
	Short: "Check whether a company with the given CNPJ exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(r *app.Runner) error {
			resp, err := r.CompanyByCNPJ(cmd.Context(), args[0])
			return report(cmd, resp, err)
		})
	},
}

var logoCmd = &cobra.Command{
	Use:   "logo <cnpj>",
	Short: "Download the logo of the company with the given CNPJ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if logoOut == "" {
			return errors.New("--out is required")
		}
		return withRunner(func(r *app.Runner) error {
			logo, err := r.Logo(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			if logo == nil {
				color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "company has no logo")
				return nil
			}
			if err := os.WriteFile(logoOut, logo, 0o644); err != nil {
				return fmt.Errorf("write logo: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "logo saved to %s (%d bytes)\n", logoOut, len(logo))
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(r *app.Runner) error {
			entries, err := r.History(historyLimit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tOPERATION\tMETHOD\tCODE\tELAPSED\tRESULT")
			for _, e := range entries {
				result := color.GreenString("ok")
				if e.Failed() {
					result = color.RedString("%s: %s", e.ErrorKind, e.Error)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%dms\t%s\n",
					e.At.Local().Format("2006-01-02 15:04:05"), e.Operation, e.Method, e.HTTPCode, e.ElapsedMS, result)
			}
			return tw.Flush()
		})
	},
}

func init() {
	callCmd.Flags().StringVar(&callData, "data", "", "JSON body file, or - for stdin")
	callCmd.Flags().StringArrayVar(&callParams, "param", nil, "query parameter as name=value (repeatable)")
	callCmd.Flags().StringArrayVar(&callFiles, "file", nil, "file field as field=path (repeatable)")
	logoCmd.Flags().StringVarP(&logoOut, "out", "o", "", "where to write the logo")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 for all)")
}

// report prints a successful response body as indented JSON, plus debug
// info on stderr when present.
func report(cmd *cobra.Command, resp *erpclean.Response, err error) error {
	if err != nil {
		return describe(err)
	}
	if err := writeBody(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if resp.Info != nil {
		info, _ := json.MarshalIndent(resp.Info, "", "  ")
		color.New(color.FgHiBlack).Fprintf(cmd.ErrOrStderr(), "%s\n", info)
	}
	return nil
}

// describe prefixes API errors with their kind so the user can tell a
// rejected request from a network problem.
func describe(err error) error {
	kind := erpclean.KindOf(err)
	if kind == 0 {
		return err
	}
	var apiErr *erpclean.Error
	if errors.As(err, &apiErr) && apiErr.HTTPCode != 0 {
		return fmt.Errorf("%s error (HTTP %d): %w", kind, apiErr.HTTPCode, err)
	}
	return fmt.Errorf("%s error: %w", kind, err)
}

func printOperations(w io.Writer, ops []erpclean.Operation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMETHOD\tPATH\tREQUIRED")
	for _, op := range ops {
		required := ""
		for i, r := range op.Required {
			if i > 0 {
				required += ","
			}
			required += r.Field
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", op.Name, op.Method, op.Path, required)
	}
	return tw.Flush()
}
