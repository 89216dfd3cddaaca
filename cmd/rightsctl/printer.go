package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/rightshare/client-sdk-go/services/i18n"
	"github.com/rightshare/client-sdk-go/services/ledger"
	"github.com/rightshare/client-sdk-go/services/rights"
)

// printer 把会话状态变化输出到终端
type printer struct {
	mu       sync.Mutex
	out      io.Writer
	narrator *i18n.Catalog
	network  ledger.Network

	lastStatus string
	lastHash   string
	lastTitle  string
}

func newPrinter(out io.Writer, narrator *i18n.Catalog, network ledger.Network) *printer {
	return &printer{out: out, narrator: narrator, network: network}
}

// onChange 只输出提交相关的增量变化
func (p *printer) onChange(s rights.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Narration.Title != "" && s.Narration.Title != p.lastTitle {
		p.lastTitle = s.Narration.Title
		fmt.Fprintf(p.out, "== %s ==\n", s.Narration.Title)
		for _, line := range s.Narration.Lines {
			fmt.Fprintf(p.out, "   %s\n", line)
		}
	}
	if s.Hash != "" && s.Hash != p.lastHash {
		p.lastHash = s.Hash
		fmt.Fprintf(p.out, "tx: %s\n", s.Hash)
		if url := p.network.TxURL(s.Hash); url != "" {
			fmt.Fprintf(p.out, "    %s\n", url)
		}
	}
	if s.Status != p.lastStatus {
		p.lastStatus = s.Status
		if s.Status != "" {
			fmt.Fprintln(p.out, s.Status)
		}
	}
	if s.InFlight == rights.ActionNone {
		p.lastTitle = ""
	}
}

// report 输出资产上各操作的估算结果
func (p *printer) report(asset *rights.Asset, form *rights.FreezeForm, s rights.State) error {
	fmt.Fprintf(p.out, "%s (%s)\n", asset.DisplayName(), asset.ContractAddress)
	if asset.Unavailable() {
		fmt.Fprintln(p.out, "underlying asset is unavailable")
		return nil
	}
	if s.Errors.Global != "" {
		fmt.Fprintf(p.out, "error: %s\n", s.Errors.Global)
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tGAS\tTONE\tERROR")
	for _, a := range rights.Actions() {
		if a == rights.ActionIssueUnencumberedI || !rights.Applicable(a, asset, form) {
			continue
		}
		if _, ok := s.Gas(a); !ok && a != rights.ActionFreeze {
			continue
		}
		errText := strings.ReplaceAll(s.ErrorFor(a), "\n", " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.narrator.Label(a), s.Tooltip(a), s.Tone(a), errText)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if s.NeedsApproval(form) {
		fmt.Fprintln(p.out, "exclusive freeze requires approve first")
	}
	for field, msg := range s.FieldErrors {
		fmt.Fprintf(p.out, "%s: %s\n", field, msg)
	}
	return nil
}

// receipt 输出确认结果
func (p *printer) receipt(r *rights.Receipt) {
	if r == nil {
		return
	}
	fmt.Fprintf(p.out, "confirmed in block %d, gas used %d\n", r.BlockNumber, r.GasUsed)
	if url := p.network.TxURL(r.TxHash); url != "" {
		fmt.Fprintln(p.out, url)
	}
}
