package core

import (
	"github.com/JonMunkholm/ParkingImport/internal/clock"
	"github.com/JonMunkholm/ParkingImport/internal/reference"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// IDFunc mints a new unique identifier.
type IDFunc func() string

// Synthesizer decides which pension subscriber a subscription row belongs
// to, creating one the first time an unknown plate is seen.
//
// The registry of minted subscribers lives for the Synthesizer's lifetime;
// use one Synthesizer per conversion run. Not safe for concurrent use.
type Synthesizer struct {
	tables *reference.Tables
	clock  clock.Clock
	newID  IDFunc
	minted map[string]string // plate key → subscriber id
}

// NewSynthesizer creates a Synthesizer with an empty registry. A nil clock
// reads the system clock and a nil newID mints random UUIDs.
func NewSynthesizer(tables *reference.Tables, c clock.Clock, newID IDFunc) *Synthesizer {
	if c == nil {
		c = clock.SystemClock{}
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Synthesizer{
		tables: tables,
		clock:  c,
		newID:  newID,
		minted: make(map[string]string),
	}
}

// Resolve returns the subscriber reference for row. Rows outside the
// subscription tariff get an invalid (NULL) reference. created is non-nil
// only when this call minted a new subscriber.
func (s *Synthesizer) Resolve(row SourceRow) (ref pgtype.Text, created *SubscriberRecord) {
	if !s.tables.IsSubscription(row.Tariff) {
		return pgtype.Text{}, nil
	}

	if id, ok := s.tables.ExistingSubscriber(row.Plate); ok {
		return pgtype.Text{String: id, Valid: true}, nil
	}

	key := reference.Key(row.Plate)
	if id, ok := s.minted[key]; ok {
		return pgtype.Text{String: id, Valid: true}, nil
	}

	id := s.newID()
	s.minted[key] = id

	now := s.clock.Now().UnixMilli()
	sub := &SubscriberRecord{
		ID:         id,
		Plate:      row.Plate,
		EntryType:  row.TypeLabel,
		MonthlyFee: s.tables.Subscriber.MonthlyFee,
		Name:       s.tables.Subscriber.Name,
		Notes:      row.Description,
		EntryDate:  now,
		PaidUntil:  now + SubscriptionPeriod.Milliseconds(),
	}
	return pgtype.Text{String: id, Valid: true}, sub
}

// Minted returns how many subscribers this Synthesizer has created.
func (s *Synthesizer) Minted() int {
	return len(s.minted)
}
