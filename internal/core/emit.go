package core

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// sqlNull is written unquoted for absent optional values.
const sqlNull = "NULL"

// Legacy defaults written for every migrated row.
const (
	legacyFolio    = "0"
	legacySynced   = "1"
	legacyActive   = "1"
	legacyNowValue = "NOW()"
)

const parkingRecordsPrefix = "INSERT INTO parking_records (id, folio, plate, description, client_type, " +
	"entry_type_id, entry_user_id, entry_time, exit_time, cost, tariff, tariff_type_id, exit_user_id, " +
	"notes, is_synced, pension_subscriber_id, created_at, updated_at) VALUES ("

const pensionSubscribersPrefix = "INSERT INTO pension_subscribers (id, folio, plate, entry_type, " +
	"monthly_fee, name, notes, entry_date, paid_until, is_active, is_synced, created_at, updated_at) VALUES ("

// RenderParkingRecord renders r as a single INSERT statement.
func RenderParkingRecord(r ParkingRecord) string {
	return renderInsert(parkingRecordsPrefix,
		quote(r.ID),
		legacyFolio,
		quote(r.Plate),
		quote(r.Description),
		quote(r.ClientType),
		quote(r.EntryTypeID),
		quote(r.EntryUserID),
		strconv.FormatInt(r.EntryTime, 10),
		nullableInt8(r.ExitTime),
		FormatCost(r.Cost),
		quote(r.Tariff),
		quote(r.TariffTypeID),
		nullableText(r.ExitUserID),
		quote(r.Notes),
		legacySynced,
		nullableText(r.PensionSubscriberID),
		legacyNowValue,
		legacyNowValue,
	)
}

// RenderSubscriber renders s as a single INSERT statement.
func RenderSubscriber(s SubscriberRecord) string {
	return renderInsert(pensionSubscribersPrefix,
		quote(s.ID),
		legacyFolio,
		quote(s.Plate),
		quote(s.EntryType),
		strconv.FormatFloat(s.MonthlyFee, 'f', 2, 64),
		quote(s.Name),
		quote(s.Notes),
		strconv.FormatInt(s.EntryDate, 10),
		strconv.FormatInt(s.PaidUntil, 10),
		legacyActive,
		legacySynced,
		legacyNowValue,
		legacyNowValue,
	)
}

func renderInsert(prefix string, values ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	b.WriteString(");")
	return b.String()
}

// quote wraps s in single quotes with embedded quotes doubled.
func quote(s string) string {
	return "'" + EscapeText(s) + "'"
}

func nullableText(t pgtype.Text) string {
	if !t.Valid {
		return sqlNull
	}
	return quote(t.String)
}

func nullableInt8(i pgtype.Int8) string {
	if !i.Valid {
		return sqlNull
	}
	return strconv.FormatInt(i.Int64, 10)
}
