package core

import (
	"time"

	"github.com/JonMunkholm/ParkingImport/internal/clock"
	"github.com/JonMunkholm/ParkingImport/internal/reference"
	"github.com/jackc/pgx/v5/pgtype"
)

// Normalizer turns a SourceRow into a ParkingRecord. It never fails: every
// unreadable cell is replaced by its documented fallback and, when a
// Diagnostics collector is supplied, recorded there.
type Normalizer struct {
	tables *reference.Tables
	clock  clock.Clock
	loc    *time.Location
}

// NewNormalizer creates a Normalizer. A nil clock reads the system clock and
// a nil location means time.Local.
func NewNormalizer(tables *reference.Tables, c clock.Clock, loc *time.Location) *Normalizer {
	if c == nil {
		c = clock.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{tables: tables, clock: c, loc: loc}
}

// Normalize builds the record for row. ID and PensionSubscriberID are left
// for the caller.
func (n *Normalizer) Normalize(row SourceRow, diag *Diagnostics) ParkingRecord {
	rec := ParkingRecord{
		Plate:       row.Plate,
		Description: row.Description,
		ClientType:  n.tables.ClientType,
		Tariff:      row.Tariff,
		Notes:       row.Notes,
	}

	rec.EntryTime = n.entryTime(row, diag, &rec.ExitTime)

	cost, ok := parseCost(row.Cost)
	if !ok {
		diag.Add(row.Line, CodeCostInvalid, ColCost, row.Cost)
	}
	rec.Cost = cost

	var known bool
	rec.EntryUserID, known = n.tables.StaffID(row.ReceivedBy)
	if !known {
		diag.Add(row.Line, CodeUnknownReceiver, ColReceivedBy, row.ReceivedBy)
	}

	// Exit user follows the presence of the cell, not whether the name resolves.
	if row.ReleasedBy != "" {
		id, known := n.tables.StaffID(row.ReleasedBy)
		if !known {
			diag.Add(row.Line, CodeUnknownReleaser, ColReleasedBy, row.ReleasedBy)
		}
		rec.ExitUserID = pgtype.Text{String: id, Valid: true}
	}

	rec.EntryTypeID, known = n.tables.EntryTypeID(row.TypeLabel)
	if !known {
		diag.Add(row.Line, CodeUnknownEntryType, ColType, row.TypeLabel)
	}

	rec.TariffTypeID, known = n.tables.TariffTypeID(row.Tariff)
	if !known {
		diag.Add(row.Line, CodeUnknownTariff, ColTariff, row.Tariff)
	}

	return rec
}

// entryTime parses both timestamps, stores the exit one in exit, and
// returns the entry instant after applying the exit → clock fallback chain.
func (n *Normalizer) entryTime(row SourceRow, diag *Diagnostics, exit *pgtype.Int8) int64 {
	entry := ParseTimestamp(row.EntryDate, row.EntryTime, n.loc)
	if !entry.Valid && row.EntryDate != "" {
		diag.Add(row.Line, CodeEntryTimeInvalid, ColEntryDate, row.EntryDate+" "+row.EntryTime)
	}

	*exit = ParseTimestamp(row.ExitDate, row.ExitTime, n.loc)
	if !exit.Valid && row.ExitDate != "" {
		diag.Add(row.Line, CodeExitTimeInvalid, ColExitDate, row.ExitDate+" "+row.ExitTime)
	}

	switch {
	case entry.Valid:
		return entry.Int64
	case exit.Valid:
		diag.Add(row.Line, CodeEntryFromExit, ColEntryDate, row.EntryDate)
		return exit.Int64
	default:
		diag.Add(row.Line, CodeEntryFromClock, ColEntryDate, row.EntryDate)
		return n.clock.Now().UnixMilli()
	}
}
