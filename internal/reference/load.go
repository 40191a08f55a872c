package reference

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML reference file and overlays it on [Default]. Any section
// present in the file replaces the compiled-in section entirely; absent
// sections keep their defaults. Unknown keys are rejected.
//
// Example:
//
//	users:
//	  "Oscar Sr.": 5102022d-6e86-4f4e-a136-22a3605a9640
//	existing_subscribers:
//	  E81-ADW: 300e0b48-6533-4699-9b0c-4c0266c590f8
func Load(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference file: %w", err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reference file %s: %w", path, err)
	}
	return t, nil
}

// presence records keys whose zero value is a legitimate override.
type presence struct {
	Subscriber struct {
		MonthlyFee *float64 `yaml:"monthly_fee"`
	} `yaml:"subscriber"`
}

// Decode is Load for an already-open reader.
func Decode(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}

	var file Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	var set presence
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	t := Default()
	t.overlay(&file, set.Subscriber.MonthlyFee != nil)
	t.prepare()

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// overlay copies every non-empty section of o onto t. The monthly fee is
// copied whenever the file sets it, zero included.
func (t *Tables) overlay(o *Tables, feeSet bool) {
	if o.Users != nil {
		t.Users = o.Users
	}
	if o.DefaultUser != "" {
		t.DefaultUser = o.DefaultUser
	}
	if o.EntryTypes != nil {
		t.EntryTypes = o.EntryTypes
	}
	if o.DefaultEntryType != "" {
		t.DefaultEntryType = o.DefaultEntryType
	}
	if o.TariffTypes != nil {
		t.TariffTypes = o.TariffTypes
	}
	if o.DefaultTariffType != "" {
		t.DefaultTariffType = o.DefaultTariffType
	}
	if o.SubscriptionTariff != "" {
		t.SubscriptionTariff = o.SubscriptionTariff
	}
	if o.ExistingSubscribers != nil {
		t.ExistingSubscribers = o.ExistingSubscribers
	}
	if o.ClientType != "" {
		t.ClientType = o.ClientType
	}
	if feeSet {
		t.Subscriber.MonthlyFee = o.Subscriber.MonthlyFee
	}
	if o.Subscriber.Name != "" {
		t.Subscriber.Name = o.Subscriber.Name
	}
}
