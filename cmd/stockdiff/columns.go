package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stockdiff/internal"
	"stockdiff/internal/pipeline"
)

func (a *app) columnsCmd() *cobra.Command {
	var (
		side  string
		sheet string
	)

	cmd := &cobra.Command{
		Use:   "columns FILE",
		Short: "Show the header of a file and the column picked for each role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := internal.Side(side)
			if s != internal.SideSource && s != internal.SideTarget {
				return fmt.Errorf("invalid side %q (source, target)", side)
			}

			table, err := pipeline.LoadTable(args[0], sheet)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d columns, %d rows\n", table.Name, len(table.Header), len(table.Rows))

			ean, cols := pipeline.ResolveSide(table.Header, s, a.cfg.Rules())
			bound := []internal.ResolvedColumn{ean, cols.ItemCode, cols.Quantity, cols.Description}
			rows := make([][]string, 0, len(bound))
			for _, col := range bound {
				name, index := "-", "-"
				if col.Found {
					name, index = col.Name, strconv.Itoa(col.Index+1)
				}
				rows = append(rows, []string{string(col.Role), name, index})
			}
			if err := renderTable(w, []string{"Role", "Column", "Position"}, rows); err != nil {
				return err
			}

			header := make([][]string, 0, len(table.Header))
			for i, h := range table.Header {
				header = append(header, []string{strconv.Itoa(i + 1), h})
			}
			return renderTable(w, []string{"#", "Header"}, header)
		},
	}

	cmd.Flags().StringVar(&side, "side", string(internal.SideSource), "which quantity keywords to apply (source, target)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet to read from a workbook")
	return cmd
}
