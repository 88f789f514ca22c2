// Package render prints portfolio data as text tables.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/utils"
)

// Portfolio writes the native balance, the holdings table and the aggregate to w.
func Portfolio(w io.Writer, address string, snapshot *entity.PortfolioSnapshot) {
	fmt.Fprintf(w, "Wallet %s on %s\n", address, snapshot.Cluster)
	fmt.Fprintf(w, "Balance: %s\n", utils.FormatSOL(snapshot.NativeBalance))

	if len(snapshot.Holdings) == 0 {
		fmt.Fprintln(w, "No token holdings.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Symbol", "Mint", "Amount", "Decimals", "Chain ID"})
	for _, h := range snapshot.Holdings {
		t.AppendRow(table.Row{h.Symbol, h.Mint, h.Amount, h.Decimals, formatChainID(h.ChainID)})
	}
	t.AppendFooter(table.Row{"", "Total", strconv.FormatFloat(snapshot.AggregateValue, 'f', -1, 64), "", ""})
	t.Render()
}

// Token writes one token list entry to w.
func Token(w io.Writer, meta entity.TokenMetadataEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendRows([]table.Row{
		{"Address", meta.Address},
		{"Symbol", meta.Symbol},
		{"Name", meta.Name},
		{"Decimals", meta.Decimals},
		{"Chain ID", formatChainID(meta.ChainID)},
		{"Logo", meta.LogoURI},
	})
	t.Render()
}

func formatChainID(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}
