// Package formatter renders compilation diagnostics for terminal output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/macrolang/mpt/internal/types"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	messageStyle = color.New(color.FgWhite, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	fixStyle     = color.New(color.FgGreen, color.Bold)
)

func styleFor(s types.Severity) *color.Color {
	switch s {
	case types.SeverityWarning:
		return warningStyle
	case types.SeverityMessage:
		return messageStyle
	default:
		return errorStyle
	}
}

func label(s types.Severity) string {
	switch s {
	case types.SeverityMessage:
		return "note"
	case types.SeverityWarning:
		return "warning"
	case types.SeveritySystemError:
		return "system error"
	default:
		return "error"
	}
}

// Format renders a list of diagnostics: a severity header with the message,
// the file:line:column locus, the offending source line with a caret under
// the column, and the optional fix suggestion. lines may be nil when no
// source snippet is available.
func Format(errs []types.CompilationError, filename string, lines []string) string {
	var builder strings.Builder
	for _, e := range errs {
		builder.WriteString(formatOne(e, filename, lines))
	}
	return builder.String()
}

func formatOne(e types.CompilationError, filename string, lines []string) string {
	var b strings.Builder

	b.WriteString(styleFor(e.Severity).Sprintf("%s: ", label(e.Severity)))
	b.WriteString(messageStyle.Sprintf("%s\n", e.Message))

	gutter := len(fmt.Sprintf("%d", e.Pos.Line))
	pad := strings.Repeat(" ", gutter)

	b.WriteString(lineStyle.Sprintf("%s--> ", pad))
	b.WriteString(fileStyle.Sprintf("%s:%d:%d\n", filename, e.Pos.Line, e.Pos.Column))

	if e.Pos.Line >= 1 && e.Pos.Line <= len(lines) {
		srcLine := lines[e.Pos.Line-1]
		b.WriteString(lineStyle.Sprintf("%s |\n", pad))
		b.WriteString(lineStyle.Sprintf("%d | ", e.Pos.Line))
		b.WriteString(fmt.Sprintf("%s\n", srcLine))
		b.WriteString(lineStyle.Sprintf("%s | ", pad))
		b.WriteString(errorStyle.Sprintf("%s^\n", caretIndent(srcLine, e.Pos.Column)))
	}

	if e.Fix != "" {
		b.WriteString(fixStyle.Sprintf("%s = fix: %s\n", pad, e.Fix))
	}
	b.WriteByte('\n')
	return b.String()
}

// caretIndent reproduces the source line's leading tabs so the caret lands
// under the right column regardless of tab rendering.
func caretIndent(srcLine string, column int) string {
	var b strings.Builder
	for i := 0; i < column-1; i++ {
		if i < len(srcLine) && srcLine[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Plain renders each diagnostic as "<line>:<column>\n<message>", one per
// line pair, with no styling. This is the minimal diagnostic surface hosts
// can rely on.
func Plain(errs []types.CompilationError) string {
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "%d:%d\n%s\n", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return b.String()
}
