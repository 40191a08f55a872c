package core

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// SubscriptionPeriod is how long a synthesized subscriber stays paid.
const SubscriptionPeriod = 30 * 24 * time.Hour

// SourceRow is one data line of the legacy export with every cell trimmed.
type SourceRow struct {
	Line        int // 1-based line in the source file
	Plate       string
	Description string
	TypeLabel   string
	EntryDate   string
	EntryTime   string
	ReceivedBy  string
	ExitDate    string
	ExitTime    string
	ReleasedBy  string
	Cost        string
	Tariff      string
	Notes       string
}

// ParkingRecord is a normalized parking_records row ready to render.
type ParkingRecord struct {
	ID           string
	Plate        string
	Description  string
	ClientType   string
	EntryTypeID  string
	EntryUserID  string
	EntryTime    int64 // ms since epoch, always set
	ExitTime     pgtype.Int8
	Cost         float64
	Tariff       string // label as written in the export
	TariffTypeID string
	ExitUserID   pgtype.Text
	Notes        string

	PensionSubscriberID pgtype.Text
}

// SubscriberRecord is a pension_subscribers row created for a plate seen
// under the subscription tariff for the first time.
type SubscriberRecord struct {
	ID         string
	Plate      string
	EntryType  string // row label, not a reference id
	MonthlyFee float64
	Name       string
	Notes      string
	EntryDate  int64 // ms since epoch
	PaidUntil  int64 // EntryDate + SubscriptionPeriod
}
