package core

// diagnostics.go records every place a row was rescued by a fallback value.
//
// Diagnostics never change the generated script. They exist so an operator
// can review what the migration guessed. Codes are stable for reference:
//
//	ROW001 - Entry date/time unreadable
//	ROW002 - Exit date/time unreadable; exit_time written as NULL
//	ROW003 - Entry timestamp missing; exit timestamp used instead
//	ROW004 - Entry and exit timestamps missing; conversion time used
//	ROW005 - Cost unreadable; 0.0 written
//	ROW006 - Receiving staff blank or unknown; default user used
//	ROW007 - Releasing staff unknown; default user used
//	ROW008 - Entry type unknown; particular type used
//	ROW009 - Tariff unknown; by-hour tariff used
//	ROW010 - Row shorter than the header; missing cells read as empty

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies a kind of fallback.
type Code string

const (
	CodeEntryTimeInvalid Code = "ROW001"
	CodeExitTimeInvalid  Code = "ROW002"
	CodeEntryFromExit    Code = "ROW003"
	CodeEntryFromClock   Code = "ROW004"
	CodeCostInvalid      Code = "ROW005"
	CodeUnknownReceiver  Code = "ROW006"
	CodeUnknownReleaser  Code = "ROW007"
	CodeUnknownEntryType Code = "ROW008"
	CodeUnknownTariff    Code = "ROW009"
	CodeShortRow         Code = "ROW010"
)

var codeMessages = map[Code]string{
	CodeEntryTimeInvalid: "entry date/time unreadable",
	CodeExitTimeInvalid:  "exit date/time unreadable",
	CodeEntryFromExit:    "entry timestamp taken from exit timestamp",
	CodeEntryFromClock:   "entry timestamp taken from conversion time",
	CodeCostInvalid:      "cost unreadable, using 0.0",
	CodeUnknownReceiver:  "receiving staff unknown, using default user",
	CodeUnknownReleaser:  "releasing staff unknown, using default user",
	CodeUnknownEntryType: "entry type unknown, using default type",
	CodeUnknownTariff:    "tariff unknown, using default tariff",
	CodeShortRow:         "row shorter than header",
}

// Message returns the human description of c.
func (c Code) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return "unknown diagnostic"
}

// Diagnostic is one fallback applied to one row.
type Diagnostic struct {
	Line  int
	Code  Code
	Field string
	Value string
}

// String formats d for logs: "line 12 [ROW005] COSTO=\"abc\": cost unreadable, using 0.0".
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d [%s] %s=%q: %s", d.Line, d.Code, d.Field, d.Value, d.Code.Message())
}

// Diagnostics collects fallbacks in encounter order.
// A nil *Diagnostics discards everything.
type Diagnostics struct {
	items  []Diagnostic
	counts map[Code]int
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{counts: make(map[Code]int)}
}

// Add records a fallback.
func (d *Diagnostics) Add(line int, code Code, field, value string) {
	if d == nil {
		return
	}
	d.items = append(d.items, Diagnostic{Line: line, Code: code, Field: field, Value: value})
	d.counts[code]++
}

// Items returns the recorded diagnostics in order.
func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.items
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

// Count returns how many times code was recorded.
func (d *Diagnostics) Count(code Code) int {
	if d == nil {
		return 0
	}
	return d.counts[code]
}

// Summary renders per-code counts sorted by code, e.g. "ROW005=2 ROW008=1".
func (d *Diagnostics) Summary() string {
	if d.Len() == 0 {
		return ""
	}
	codes := make([]string, 0, len(d.counts))
	for c := range d.counts {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)

	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = fmt.Sprintf("%s=%d", c, d.counts[Code(c)])
	}
	return strings.Join(parts, " ")
}
