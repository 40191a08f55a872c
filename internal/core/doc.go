// Package core converts the legacy parking spreadsheet export into a SQL
// script for the parking_records and pension_subscribers tables.
//
// This package holds all transformation logic and has no I/O beyond the
// io.Reader it is handed. It can be driven by the CLI, by tests, or by any
// other caller.
//
// # Pipeline
//
// A [Converter] runs one conversion. For every data row, in file order:
//
//  1. [ReadSourceRow] maps the cells onto a [SourceRow] using the header contract
//  2. [Normalizer] parses dates, costs and labels into a [ParkingRecord]
//  3. [Synthesizer] attaches a pension subscriber for subscription rows,
//     creating one the first time an unknown plate is seen
//  4. [RenderSubscriber] and [RenderParkingRecord] emit the statements
//
// # Fallbacks
//
// Bad data never stops a run. Every unreadable cell takes a documented
// default and is recorded in [Diagnostics] under a stable code (ROW001…).
// Only an unreadable stream, a header missing required columns, or
// cancellation return an error.
//
// # Time
//
// Dates are read in a configured location. When a row has no usable entry or
// exit timestamp the injected [clock.Clock] supplies one; tests pin it with
// clock.Fixed.
package core
