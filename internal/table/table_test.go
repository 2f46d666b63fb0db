package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/amishk599/execsum/internal/model"
)

func TestNew_PadsShortRowsAndSkipsBlank(t *testing.T) {
	tbl, err := New([]string{"Candidate Name", "Manages Change"}, [][]string{
		{"A", "2"},
		{"", ""},
		{"B"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if got := tbl.Cell(1, "Manages Change").String(); got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
}

func TestNew_RejectsLongRows(t *testing.T) {
	_, err := New([]string{"a"}, [][]string{{"1", "2"}})
	if err == nil {
		t.Fatal("expected error for row wider than header")
	}
}

func TestNew_MakesColumnNamesUnique(t *testing.T) {
	tbl, err := New([]string{"\ufeffName", "Score", "Score", "", "Score"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"Name", "Score", "Score.1", "Unnamed: 3", "Score.2"}
	if diff := cmp.Diff(want, tbl.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RenamedDuplicatesDoNotCollide(t *testing.T) {
	tbl, err := New([]string{"X.1", "X", "X"}, [][]string{{"a", "b", "c"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]string{"X.1", "X", "X.2"}, tbl.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, tbl.Record(0)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_DuplicateOfRenamedName(t *testing.T) {
	tbl, err := New([]string{"X", "X", "X.1", "X.1"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]string{"X", "X.2", "X.1", "X.1.1"}, tbl.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_Number(t *testing.T) {
	if n, ok := Text(" 4 ").Number(); !ok || n != 4 {
		t.Errorf("Number(\" 4 \") = %v, %v", n, ok)
	}
	if _, ok := Text("four").Number(); ok {
		t.Error("expected non-numeric text to report ok=false")
	}
}

func TestWithColumn_AppendsWithoutMutating(t *testing.T) {
	src, _ := New([]string{"Name"}, [][]string{{"A"}, {"B"}})

	out, err := src.WithColumn("Executive Summary", []Value{Text("x"), Text("y")})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if src.HasColumn("Executive Summary") {
		t.Error("source table was modified")
	}
	if diff := cmp.Diff([]string{"B", "y"}, out.Record(1)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestWithColumn_ReplacesExisting(t *testing.T) {
	src, _ := New([]string{"Name", "Executive Summary", "Extra"}, [][]string{{"A", "old", "e"}})

	out, err := src.WithColumn("Executive Summary", []Value{Text("new")})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "new", "e"}, out.Record(0)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestWithColumn_LengthMismatch(t *testing.T) {
	src, _ := New([]string{"Name"}, [][]string{{"A"}})
	if _, err := src.WithColumn("x", nil); err == nil {
		t.Fatal("expected error for wrong number of values")
	}
}

func TestLoad_CSVWithBOM(t *testing.T) {
	data := "\ufeffCandidate Name,Leads Inspirationally\nA,2\nB,5\n"
	tbl, err := Load(strings.NewReader(data), "scores.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Candidate Name", "Leads Inspirationally"}, tbl.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Cell(1, "Leads Inspirationally").String(); got != "5" {
		t.Errorf("cell = %q, want 5", got)
	}
}

func TestLoad_TSV(t *testing.T) {
	tbl, err := Load(strings.NewReader("Name\tScore\nA\t3\n"), "scores.tsv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Cell(0, "Score").String() != "3" {
		t.Errorf("cell = %q, want 3", tbl.Cell(0, "Score").String())
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]any{"Candidate Name", "Manages Change"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]any{"A", 2}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(&buf, "scores.xlsx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
	if got := tbl.Cell(0, "Manages Change").String(); got != "2" {
		t.Errorf("cell = %q, want 2", got)
	}
}

func TestLoad_ErrorsAreInputErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"unsupported extension", "scores.pdf", "x"},
		{"empty csv", "scores.csv", ""},
		{"corrupt workbook", "scores.xlsx", "not a zip"},
		{"ragged csv", "scores.csv", "a\n1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data), tt.file)
			var inErr *model.InputError
			if !errors.As(err, &inErr) {
				t.Fatalf("err = %v, want *model.InputError", err)
			}
			if inErr.Source != tt.file {
				t.Errorf("Source = %q, want %q", inErr.Source, tt.file)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	var inErr *model.InputError
	if !errors.As(err, &inErr) {
		t.Fatalf("err = %v, want *model.InputError", err)
	}
}

func TestWriteCSV_BOMHeaderAndOrder(t *testing.T) {
	tbl, _ := New([]string{"Name", "Executive Summary"}, [][]string{
		{"A", "line one\nline two"},
		{"B", "Error: failed"},
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeffName,Executive Summary\n") {
		t.Errorf("unexpected prefix: %q", out[:min(len(out), 40)])
	}
	if !strings.Contains(out, "A,\"line one\nline two\"\nB,Error: failed\n") {
		t.Errorf("rows not written in order: %q", out)
	}

	// Round trip through the loader keeps the rows.
	back, err := Load(strings.NewReader(out), "out.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(tbl.Record(0), back.Record(0)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVFile(t *testing.T) {
	tbl, _ := New([]string{"Name"}, [][]string{{"A"}})
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := WriteCSVFile(path, tbl); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\ufeffName\nA\n" {
		t.Errorf("file = %q", data)
	}
}
