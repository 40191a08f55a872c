package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/ParkingImport/internal/clock"
	"github.com/jackc/pgx/v5/pgtype"
)

const testHeader = "SEC.;PLACA;AUTO / DESCRIPCIÓN;TIPO;FECHA ENTRADA;HORA ENTRADA;RECIBIÓ;" +
	"FECHA SALIDA;HORA SALIDA;ENTREGÓ;TIEMPO;COSTO;TARIFA;COMENTARIOS"

func csvOf(rows ...string) string {
	return strings.Join(append([]string{testHeader}, rows...), "\n") + "\n"
}

func newTestConverter() *Converter {
	return NewConverter(Options{
		Clock:    clock.Fixed(fixedNow),
		Location: time.UTC,
		NewID:    sequentialIDs("id"),
	})
}

func runCSV(t *testing.T, input string) *Result {
	t.Helper()
	res, err := newTestConverter().Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res
}

func TestRun_SingleRecord(t *testing.T) {
	res := runCSV(t, csvOf(
		"1;ABC-123;Tsuru blanco;PARTICULAR;15/03/24;14:30:05;Oscar Jr.;16/03/24;9:05;Oscar Sr.;18:35; $30 ;COMPLETO;",
	))

	if len(res.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(res.Statements))
	}
	want := RenderParkingRecord(ParkingRecord{
		ID:           "id-1",
		Plate:        "ABC-123",
		Description:  "Tsuru blanco",
		ClientType:   "GENERAL",
		EntryTypeID:  particularID,
		EntryUserID:  oscarJrID,
		EntryTime:    1710513005000,
		ExitTime:     pgtype.Int8{Int64: 1710579900000, Valid: true},
		Cost:         30,
		Tariff:       "COMPLETO",
		TariffTypeID: completoID,
		ExitUserID:   pgtype.Text{String: oscarSrID, Valid: true},
	})
	if got := res.Statements[0]; got != want {
		t.Errorf("statement mismatch:\n got: %s\nwant: %s", got, want)
	}
	if res.Stats.Rows != 1 || res.Stats.Records != 1 || res.Stats.NewSubscribers != 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestRun_SubscriberDedup(t *testing.T) {
	res := runCSV(t, csvOf(
		"1;NEW-001;Jetta gris;NOCTURNO;01/03/24;20:00;Oscar Sr.;02/03/24;7:00;Oscar Sr.;; $- ;PENSIÓN;",
		"2;XYZ-999;Vocho;PARTICULAR;01/03/24;10:00;Oscar Sr.;;;;;$15;POR HORA;",
		"3;NEW-001;Jetta gris;NOCTURNO;02/03/24;20:00;Oscar Jr.;03/03/24;7:00;;; $- ;PENSIÓN;",
	))

	if len(res.Statements) != 4 {
		t.Fatalf("got %d statements, want 4:\n%s", len(res.Statements), res.Script())
	}

	var subscriberStmts int
	for _, s := range res.Statements {
		if strings.HasPrefix(s, "INSERT INTO pension_subscribers") {
			subscriberStmts++
		}
	}
	if subscriberStmts != 1 {
		t.Errorf("got %d subscriber statements, want 1", subscriberStmts)
	}

	// Subscriber id-1 is minted before record id-2 and precedes it.
	if !strings.HasPrefix(res.Statements[0], "INSERT INTO pension_subscribers") ||
		!strings.Contains(res.Statements[0], "VALUES ('id-1', 0, 'NEW-001', 'NOCTURNO', 1000.00, 'Eliezer', 'Jetta gris',") {
		t.Errorf("first statement should create the subscriber: %s", res.Statements[0])
	}
	if !strings.HasSuffix(res.Statements[1], ", 1, 'id-1', NOW(), NOW());") {
		t.Errorf("first pension record should reference id-1: %s", res.Statements[1])
	}
	if !strings.HasSuffix(res.Statements[2], ", 1, NULL, NOW(), NOW());") {
		t.Errorf("hourly record should reference NULL: %s", res.Statements[2])
	}
	if !strings.HasSuffix(res.Statements[3], ", 1, 'id-1', NOW(), NOW());") {
		t.Errorf("second pension record should reuse id-1: %s", res.Statements[3])
	}

	if res.Stats.NewSubscribers != 1 || res.Stats.SubscriptionRows != 2 || res.Stats.Records != 3 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestRun_ExistingSubscriberNotSynthesized(t *testing.T) {
	res := runCSV(t, csvOf(
		"1;E81-ADW;Sr. Marco Polo;NOCTURNO;01/03/24;20:00;Oscar Sr.;;;;;;PENSIÓN;",
		"2;E81-ADW;Sr. Marco Polo;NOCTURNO;02/03/24;20:00;Oscar Sr.;;;;;;PENSIÓN;",
	))

	if len(res.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(res.Statements))
	}
	for _, s := range res.Statements {
		if strings.HasPrefix(s, "INSERT INTO pension_subscribers") {
			t.Errorf("known plate synthesized a subscriber: %s", s)
		}
		if !strings.Contains(s, "'"+existingSubID+"'") {
			t.Errorf("record should reference the existing subscriber: %s", s)
		}
	}
	if res.Stats.ExistingSubRefs != 2 {
		t.Errorf("ExistingSubRefs = %d, want 2", res.Stats.ExistingSubRefs)
	}
}

func TestRun_EntryTimestampFallbacks(t *testing.T) {
	res := runCSV(t, csvOf(
		"1;AAA-111;;PARTICULAR;;;Oscar Sr.;16/03/24;9:05;;;;POR HORA;",
		"2;BBB-222;;PARTICULAR;;;Oscar Sr.;;;;;;POR HORA;",
	))

	if !strings.Contains(res.Statements[0], ", 1710579900000, 1710579900000, ") {
		t.Errorf("entry should equal exit: %s", res.Statements[0])
	}

	nowMs := fixedNow.UnixMilli()
	if !strings.Contains(res.Statements[1], ", "+strconv.FormatInt(nowMs, 10)+", NULL, ") {
		t.Errorf("entry should be the clock and exit NULL: %s", res.Statements[1])
	}
	if res.Diagnostics.Count(CodeEntryFromExit) != 1 || res.Diagnostics.Count(CodeEntryFromClock) != 1 {
		t.Errorf("diagnostics = %s", res.Diagnostics.Summary())
	}
}

func TestRun_EscapesApostrophes(t *testing.T) {
	res := runCSV(t, csvOf(
		"1;ABC-123;O'Brien's Sedan;PARTICULAR;15/03/24;14:30;Oscar Sr.;;;;;$10;POR HORA;cliente 'VIP'",
	))

	got := res.Statements[0]
	if !strings.Contains(got, "'O''Brien''s Sedan'") {
		t.Errorf("description not escaped: %s", got)
	}
	if !strings.Contains(got, "'cliente ''VIP'''") {
		t.Errorf("notes not escaped: %s", got)
	}
}

func TestRun_ShortRowDiagnosed(t *testing.T) {
	res := runCSV(t, csvOf(
		"1;ABC-123;Tsuru;PARTICULAR;15/03/24;14:30;Oscar Sr.;;;;;$10;POR HORA",
	))

	if len(res.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(res.Statements))
	}
	if res.Diagnostics.Count(CodeShortRow) != 1 {
		t.Errorf("diagnostics = %s, want one ROW010", res.Diagnostics.Summary())
	}
	if items := res.Diagnostics.Items(); len(items) > 0 && items[0].Line != 2 {
		t.Errorf("Line = %d, want 2", items[0].Line)
	}
}

func TestRun_BOMAndBlankLines(t *testing.T) {
	input := "\uFEFF" + testHeader + "\n\n1;ABC-123;Tsuru;PARTICULAR;15/03/24;14:30;Oscar Sr.;;;;;$10;POR HORA;\n\n"
	res := runCSV(t, input)
	if len(res.Statements) != 1 {
		t.Errorf("got %d statements, want 1", len(res.Statements))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	res := runCSV(t, "")
	if len(res.Statements) != 0 || res.Script() != "" {
		t.Errorf("empty input produced %q", res.Script())
	}
}

func TestRun_HeaderOnly(t *testing.T) {
	res := runCSV(t, testHeader+"\n")
	if len(res.Statements) != 0 {
		t.Errorf("header-only input produced %d statements", len(res.Statements))
	}
}

func TestRun_MissingColumnIsFatal(t *testing.T) {
	_, err := newTestConverter().Run(context.Background(), strings.NewReader("PLACA;TIPO\nABC;PARTICULAR\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Run() error = %v, want ErrMissingColumn", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestConverter().Run(ctx, strings.NewReader(csvOf("1;ABC;;;;;;;;;;;;")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestRun_ReadErrorIsFatal(t *testing.T) {
	_, err := newTestConverter().Run(context.Background(), failingReader{})
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("Run() error = %v, want read failure", err)
	}
}

func TestResult_ScriptJoin(t *testing.T) {
	r := &Result{Statements: []string{"A;", "B;"}}
	if got := r.Script(); got != "A;\nB;" {
		t.Errorf("Script() = %q, want %q", got, "A;\nB;")
	}
}
