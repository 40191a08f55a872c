// Package reference holds the fixed label → identifier mappings the legacy
// export is reconciled against: staff, entry types, tariff types and the
// subscribers that already exist in the target database.
//
// The compiled-in tables reproduce the production database at the time of
// the migration. A YAML file can replace any section (see [Load]) without
// changing output for sections it leaves out.
package reference

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tables is the full set of reference data for one run.
// Lookups must go through the methods; the maps are re-keyed by [Key] when
// the tables are prepared.
type Tables struct {
	Users       map[string]string `yaml:"users"`
	DefaultUser string            `yaml:"default_user"`

	EntryTypes       map[string]string `yaml:"entry_types"`
	DefaultEntryType string            `yaml:"default_entry_type"`

	TariffTypes        map[string]string `yaml:"tariff_types"`
	DefaultTariffType  string            `yaml:"default_tariff_type"`
	SubscriptionTariff string            `yaml:"subscription_tariff"`

	// ExistingSubscribers maps plate → pension_subscribers.id.
	ExistingSubscribers map[string]string `yaml:"existing_subscribers"`

	// ClientType is written verbatim to parking_records.client_type.
	ClientType string             `yaml:"client_type"`
	Subscriber SubscriberDefaults `yaml:"subscriber"`
}

// SubscriberDefaults are the constant columns of a synthesized subscriber.
type SubscriberDefaults struct {
	MonthlyFee float64 `yaml:"monthly_fee"`
	Name       string  `yaml:"name"`
}

// Default returns the compiled-in reference tables.
func Default() *Tables {
	t := &Tables{
		Users: map[string]string{
			"Oscar Sr.": "5102022d-6e86-4f4e-a136-22a3605a9640",
			"Oscar Jr.": "9871e842-881e-451e-848f-519277732a30",
		},
		DefaultUser: "Oscar Sr.",

		EntryTypes: map[string]string{
			"DIA y NOCHE": "08d4eceb-d010-4a66-89a1-752b173f3018",
			"PARTICULAR":  "2168f9a2-d234-4b5e-a3a0-6b0096885ca3",
			"IBMH":        "bd3c238e-832a-42a5-91b4-b9ba2d779540",
			"IDNTA":       "d9d1e688-1910-4c9f-8a92-4979275ab814",
			"NOCTURNO":    "nocturno", // legacy row id, not a UUID
			"COOD":        "f28ca8ab-4b85-475b-9760-b14f0e8a42e8",
		},
		DefaultEntryType: "PARTICULAR",

		TariffTypes: map[string]string{
			"COMPLETO":  "4b939d89-d736-48a2-951a-6bdae4147c1f",
			"POR HORA":  "c14a4154-bb88-4b65-90c7-1707f9518c8a",
			"MEDIO DIA": "ae72078b-2d35-4900-92ed-fd38d080090d",
			"PENSIÓN":   "375390e8-15c9-40c4-ac63-bfed75ed7d17",
		},
		DefaultTariffType:  "POR HORA",
		SubscriptionTariff: "PENSIÓN",

		ExistingSubscribers: map[string]string{
			"E81-ADW": "300e0b48-6533-4699-9b0c-4c0266c590f8",
		},

		ClientType: "GENERAL",
		Subscriber: SubscriberDefaults{
			MonthlyFee: 1000,
			Name:       "Eliezer",
		},
	}
	t.prepare()
	return t
}

// Key canonicalises a label or plate for lookup: surrounding whitespace is
// trimmed and the text is put in Unicode NFC so precomposed and decomposed
// accents compare equal.
func Key(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// prepare re-keys every map and default label with Key.
func (t *Tables) prepare() {
	t.Users = rekey(t.Users)
	t.EntryTypes = rekey(t.EntryTypes)
	t.TariffTypes = rekey(t.TariffTypes)
	t.ExistingSubscribers = rekey(t.ExistingSubscribers)
	t.DefaultUser = Key(t.DefaultUser)
	t.DefaultEntryType = Key(t.DefaultEntryType)
	t.DefaultTariffType = Key(t.DefaultTariffType)
	t.SubscriptionTariff = Key(t.SubscriptionTariff)
}

func rekey(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[Key(k)] = strings.TrimSpace(v)
	}
	return out
}

// Validate checks that every default label resolves in its own table.
func (t *Tables) Validate() error {
	var errs []string

	if _, ok := t.Users[t.DefaultUser]; !ok {
		errs = append(errs, fmt.Sprintf("default_user %q is not in users", t.DefaultUser))
	}
	if _, ok := t.EntryTypes[t.DefaultEntryType]; !ok {
		errs = append(errs, fmt.Sprintf("default_entry_type %q is not in entry_types", t.DefaultEntryType))
	}
	if _, ok := t.TariffTypes[t.DefaultTariffType]; !ok {
		errs = append(errs, fmt.Sprintf("default_tariff_type %q is not in tariff_types", t.DefaultTariffType))
	}
	if t.SubscriptionTariff == "" {
		errs = append(errs, "subscription_tariff must not be empty")
	}
	if t.Subscriber.MonthlyFee < 0 {
		errs = append(errs, "subscriber.monthly_fee must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid reference tables:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// StaffID resolves a staff name to a user id. Blank or unknown names
// resolve to the default user with ok=false.
func (t *Tables) StaffID(name string) (id string, ok bool) {
	if id, ok := t.Users[Key(name)]; ok {
		return id, true
	}
	return t.Users[t.DefaultUser], false
}

// EntryTypeID resolves an entry-type label, defaulting to the particular type.
func (t *Tables) EntryTypeID(label string) (id string, ok bool) {
	if id, ok := t.EntryTypes[Key(label)]; ok {
		return id, true
	}
	return t.EntryTypes[t.DefaultEntryType], false
}

// TariffTypeID resolves a tariff label, defaulting to the by-hour type.
func (t *Tables) TariffTypeID(label string) (id string, ok bool) {
	if id, ok := t.TariffTypes[Key(label)]; ok {
		return id, true
	}
	return t.TariffTypes[t.DefaultTariffType], false
}

// ExistingSubscriber returns the id of a subscriber already present in the
// target database for plate.
func (t *Tables) ExistingSubscriber(plate string) (string, bool) {
	id, ok := t.ExistingSubscribers[Key(plate)]
	return id, ok
}

// IsSubscription reports whether a tariff label is the monthly pension plan.
func (t *Tables) IsSubscription(tariff string) bool {
	return Key(tariff) == t.SubscriptionTariff
}
