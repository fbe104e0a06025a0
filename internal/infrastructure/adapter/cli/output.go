package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printAccount(w io.Writer, view entity.AccountView) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ACCOUNT\tNAME\tBALANCE")
	fmt.Fprintf(tw, "%d\t%s\t%s\n", view.ID, view.Name, view.FormattedBalance())
	return tw.Flush()
}

func printTransactions(w io.Writer, rows ...*entity.Transaction) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TX\tACCOUNT\tTYPE\tAMOUNT\tCOUNTERPARTY\tCREATED")
	for _, row := range rows {
		if row == nil {
			continue
		}
		target := "-"
		if id := row.Target(); id != 0 {
			target = strconv.FormatUint(id, 10)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			row.ID, row.AccountID, row.Type, row.FormattedAmount(), target,
			row.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
