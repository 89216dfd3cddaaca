// Package i18n 提供操作按钮文案与交易说明的多语言表
package i18n

import (
	"fmt"
	"strings"

	"github.com/rightshare/client-sdk-go/services/rights"
)

// Language 语言代码
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// narration 交易说明模板；Lines 中的 %s 依次由参数替换
type narration struct {
	title string
	lines []string
}

type table struct {
	labels     map[rights.Action]string
	narrations map[rights.Action]narration
}

var tables = map[Language]table{
	English: {
		labels: map[rights.Action]string{
			rights.ActionApprove:            "Approve",
			rights.ActionFreeze:             "Freeze",
			rights.ActionIssueUnencumberedI: "Freeze",
			rights.ActionUnfreeze:           "Unfreeze",
			rights.ActionIssueI:             "Issue IRight",
			rights.ActionRevokeI:            "Revoke",
			rights.ActionTransfer:           "Transfer",
		},
		narrations: map[rights.Action]narration{
			rights.ActionApprove: {
				title: "Approve",
				lines: []string{"Allow the Rights DAO to take custody of this NFT.", "This is required once before an exclusive freeze."},
			},
			rights.ActionFreeze: {
				title: "Freeze",
				lines: []string{"Lock this NFT in the Rights DAO.", "You will receive an FRight and an exclusive IRight."},
			},
			rights.ActionIssueUnencumberedI: {
				title: "Freeze",
				lines: []string{"Issue IRights for this NFT without locking it.", "You will receive an FRight and the first IRight."},
			},
			rights.ActionUnfreeze: {
				title: "Unfreeze",
				lines: []string{"Burn the FRight and return the original NFT to you."},
			},
			rights.ActionIssueI: {
				title: "Issue IRight",
				lines: []string{"Issue a new IRight from this FRight."},
			},
			rights.ActionRevokeI: {
				title: "Revoke",
				lines: []string{"Burn this IRight."},
			},
			rights.ActionTransfer: {
				title: "Transfer",
				lines: []string{"Transfer this IRight to %s."},
			},
		},
	},
	Chinese: {
		labels: map[rights.Action]string{
			rights.ActionApprove:            "授权",
			rights.ActionFreeze:             "冻结",
			rights.ActionIssueUnencumberedI: "冻结",
			rights.ActionUnfreeze:           "解冻",
			rights.ActionIssueI:             "发行 IRight",
			rights.ActionRevokeI:            "撤销",
			rights.ActionTransfer:           "转让",
		},
		narrations: map[rights.Action]narration{
			rights.ActionApprove: {
				title: "授权",
				lines: []string{"允许 Rights DAO 托管该 NFT。", "独占冻结前需要先完成一次授权。"},
			},
			rights.ActionFreeze: {
				title: "冻结",
				lines: []string{"将该 NFT 锁定到 Rights DAO。", "你将获得一个 FRight 和一个独占 IRight。"},
			},
			rights.ActionIssueUnencumberedI: {
				title: "冻结",
				lines: []string{"在不锁定 NFT 的情况下为其发行 IRight。", "你将获得一个 FRight 和第一个 IRight。"},
			},
			rights.ActionUnfreeze: {
				title: "解冻",
				lines: []string{"销毁 FRight 并取回原始 NFT。"},
			},
			rights.ActionIssueI: {
				title: "发行 IRight",
				lines: []string{"由该 FRight 发行新的 IRight。"},
			},
			rights.ActionRevokeI: {
				title: "撤销",
				lines: []string{"销毁该 IRight。"},
			},
			rights.ActionTransfer: {
				title: "转让",
				lines: []string{"将该 IRight 转让给 %s。"},
			},
		},
	},
}

// Catalog 某一语言的文案表，实现 rights.Narrator
type Catalog struct {
	lang  Language
	table table
}

var _ rights.Narrator = (*Catalog)(nil)

// New 创建指定语言的文案表；未知语言回退到英文
func New(lang string) *Catalog {
	l := Language(strings.ToLower(strings.TrimSpace(lang)))
	if i := strings.IndexAny(string(l), "-_"); i > 0 {
		l = l[:i]
	}
	t, ok := tables[l]
	if !ok {
		l, t = English, tables[English]
	}
	return &Catalog{lang: l, table: t}
}

// Language 返回实际使用的语言
func (c *Catalog) Language() Language {
	return c.lang
}

// Label 按钮文案
func (c *Catalog) Label(action rights.Action) string {
	if s, ok := c.table.labels[action]; ok {
		return s
	}
	return action.String()
}

// Narrate 交易说明
func (c *Catalog) Narrate(action rights.Action, args ...string) rights.Narration {
	n, ok := c.table.narrations[action]
	if !ok {
		return rights.Narration{Title: c.Label(action)}
	}

	out := rights.Narration{Title: n.title, Lines: make([]string, 0, len(n.lines))}
	next := 0
	for _, line := range n.lines {
		if !strings.Contains(line, "%s") {
			out.Lines = append(out.Lines, line)
			continue
		}
		arg := "-"
		if next < len(args) {
			arg = args[next]
			next++
		}
		out.Lines = append(out.Lines, fmt.Sprintf(line, arg))
	}
	return out
}

// Languages 支持的语言
func Languages() []Language {
	return []Language{English, Chinese}
}
