package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/ParkingImport/internal/reference"
)

// ErrMissingColumn is returned when the export header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Source column headers as written by the legacy spreadsheet.
const (
	ColSequence    = "SEC."
	ColPlate       = "PLACA"
	ColDescription = "AUTO / DESCRIPCIÓN"
	ColType        = "TIPO"
	ColEntryDate   = "FECHA ENTRADA"
	ColEntryTime   = "HORA ENTRADA"
	ColReceivedBy  = "RECIBIÓ"
	ColExitDate    = "FECHA SALIDA"
	ColExitTime    = "HORA SALIDA"
	ColReleasedBy  = "ENTREGÓ"
	ColElapsed     = "TIEMPO"
	ColCost        = "COSTO"
	ColTariff      = "TARIFA"
	ColComments    = "COMENTARIOS"
)

// ColumnSpec describes one column of the export header.
type ColumnSpec struct {
	Name     string
	Required bool
}

// SourceColumns is the header contract of the export, in file order.
// SEC. and TIEMPO are carried by the spreadsheet but never read.
var SourceColumns = []ColumnSpec{
	{Name: ColSequence},
	{Name: ColPlate, Required: true},
	{Name: ColDescription, Required: true},
	{Name: ColType, Required: true},
	{Name: ColEntryDate, Required: true},
	{Name: ColEntryTime, Required: true},
	{Name: ColReceivedBy, Required: true},
	{Name: ColExitDate, Required: true},
	{Name: ColExitTime, Required: true},
	{Name: ColReleasedBy, Required: true},
	{Name: ColElapsed},
	{Name: ColCost, Required: true},
	{Name: ColTariff, Required: true},
	{Name: ColComments},
}

// HeaderIndex maps normalized column names to their position in the row.
type HeaderIndex map[string]int

// headerKey normalizes a header cell: trimmed, NFC, lowercased.
func headerKey(s string) string {
	return strings.ToLower(reference.Key(s))
}

// MakeHeaderIndex creates a HeaderIndex from the header record.
// When a name repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := headerKey(h)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Require checks that every required column in specs is present.
func (h HeaderIndex) Require(specs []ColumnSpec) error {
	var missing []string
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := h[headerKey(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the trimmed cell for column name, or "" when the column is
// absent or the row is too short to hold it.
func (h HeaderIndex) Get(record []string, name string) string {
	i, ok := h[headerKey(name)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadSourceRow maps a CSV record onto a SourceRow.
func ReadSourceRow(record []string, h HeaderIndex, line int) SourceRow {
	return SourceRow{
		Line:        line,
		Plate:       h.Get(record, ColPlate),
		Description: h.Get(record, ColDescription),
		TypeLabel:   h.Get(record, ColType),
		EntryDate:   h.Get(record, ColEntryDate),
		EntryTime:   h.Get(record, ColEntryTime),
		ReceivedBy:  h.Get(record, ColReceivedBy),
		ExitDate:    h.Get(record, ColExitDate),
		ExitTime:    h.Get(record, ColExitTime),
		ReleasedBy:  h.Get(record, ColReleasedBy),
		Cost:        h.Get(record, ColCost),
		Tariff:      h.Get(record, ColTariff),
		Notes:       h.Get(record, ColComments),
	}
}
