package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/ParkingImport/internal/clock"
	"github.com/JonMunkholm/ParkingImport/internal/logging"
	"github.com/JonMunkholm/ParkingImport/internal/reference"
	"github.com/google/uuid"
)

// ContextCheckInterval is how often (in rows) Run checks for cancellation.
var ContextCheckInterval = 100

// Delimiter separates cells in the legacy export.
const Delimiter = ';'

// Options configures a Converter. Zero values select production defaults.
type Options struct {
	Tables   *reference.Tables // default: reference.Default()
	Clock    clock.Clock       // default: clock.SystemClock
	Location *time.Location    // default: time.Local
	Encoding string            // default: utf-8
	NewID    IDFunc            // default: uuid.NewString
}

// Stats summarizes a run.
type Stats struct {
	Rows             int // data rows read
	Records          int // parking_records statements
	NewSubscribers   int // pension_subscribers statements
	SubscriptionRows int // rows under the subscription tariff
	ExistingSubRefs  int // subscription rows pointing at a pre-existing subscriber
}

// Result is the output of one conversion run.
type Result struct {
	Statements  []string
	Stats       Stats
	Diagnostics *Diagnostics
}

// Script joins the statements with newlines, without a trailing newline.
func (r *Result) Script() string {
	return strings.Join(r.Statements, "\n")
}

// Converter runs the export → SQL conversion. It owns the subscriber
// registry, so one Converter serves exactly one run.
type Converter struct {
	tables     *reference.Tables
	encoding   string
	newID      IDFunc
	normalizer *Normalizer
	synth      *Synthesizer
}

// NewConverter builds a Converter from opts.
func NewConverter(opts Options) *Converter {
	if opts.Tables == nil {
		opts.Tables = reference.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Converter{
		tables:     opts.Tables,
		encoding:   opts.Encoding,
		newID:      opts.NewID,
		normalizer: NewNormalizer(opts.Tables, opts.Clock, opts.Location),
		synth:      NewSynthesizer(opts.Tables, opts.Clock, opts.NewID),
	}
}

// Run reads the export from r and returns every statement in encounter
// order. Bad cells never fail the run; an unreadable stream, a malformed
// header, or a cancelled ctx do.
//
// An empty input yields an empty Result.
func (c *Converter) Run(ctx context.Context, r io.Reader) (*Result, error) {
	log := logging.FromContext(ctx)

	src, err := WrapSource(r, c.encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(src)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &Result{Diagnostics: NewDiagnostics()}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		log.Warn("source has no header row")
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	headerIdx := MakeHeaderIndex(header)
	if err := headerIdx.Require(SourceColumns); err != nil {
		return nil, err
	}

	for {
		if result.Stats.Rows%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("conversion cancelled after %d rows: %w", result.Stats.Rows, err)
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", result.Stats.Rows+1, err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) < len(header) {
			result.Diagnostics.Add(line, CodeShortRow, "", fmt.Sprintf("%d/%d cells", len(record), len(header)))
		}

		c.convertRow(ReadSourceRow(record, headerIdx, line), result)
	}

	log.Debug("conversion finished",
		"rows", result.Stats.Rows,
		"records", result.Stats.Records,
		"new_subscribers", result.Stats.NewSubscribers,
	)
	return result, nil
}

// convertRow normalizes, synthesizes and emits one row.
func (c *Converter) convertRow(row SourceRow, result *Result) {
	result.Stats.Rows++

	rec := c.normalizer.Normalize(row, result.Diagnostics)

	ref, created := c.synth.Resolve(row)
	rec.ID = c.newID()
	rec.PensionSubscriberID = ref
	if ref.Valid {
		result.Stats.SubscriptionRows++
		if _, existing := c.tables.ExistingSubscriber(row.Plate); existing {
			result.Stats.ExistingSubRefs++
		}
	}

	// The subscriber must precede the record that references it.
	if created != nil {
		result.Statements = append(result.Statements, RenderSubscriber(*created))
		result.Stats.NewSubscribers++
	}

	result.Statements = append(result.Statements, RenderParkingRecord(rec))
	result.Stats.Records++
}
