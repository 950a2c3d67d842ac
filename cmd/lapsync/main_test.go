package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// newTestBook saves a training log with workbook-scoped Reps/Durations on
// Sheet1 and a Week2 sheet whose own Reps name overrides the workbook one.
func newTestBook(t *testing.T) string {
	t.Helper()
	t.Setenv("LAPSYNC_LOG_LEVEL", "ERROR")

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "C5", 3)
	f.SetCellValue("Sheet1", "D5", 30)
	f.SetCellValue("Sheet1", "E2", 4)
	f.SetCellValue("Sheet1", "E3", 6)
	f.SetCellValue("Sheet1", "F2", 14)
	f.SetCellValue("Sheet1", "F3", 21)
	f.NewSheet("Week2")
	f.SetDefinedName(&excelize.DefinedName{Name: "Reps", RefersTo: "Sheet1!$E$2:$E$50"})
	f.SetDefinedName(&excelize.DefinedName{Name: "Durations", RefersTo: "Sheet1!$F$2:$F$50"})
	f.SetDefinedName(&excelize.DefinedName{Name: "Reps", RefersTo: "Week2!$B$3:$B$30", Scope: "Week2"})
	f.SetDefinedName(&excelize.DefinedName{Name: "Other", RefersTo: "Sheet1!$A$1:$A$2"})

	input := filepath.Join(t.TempDir(), "log.xlsx")
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return input
}

// execute runs the CLI with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestEditCommand(t *testing.T) {
	input := newTestBook(t)
	output := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := execute(t, "edit", input, "--sheet", "Sheet1", "--cell", "E5", "--value", "4", "-o", output)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if got := gjson.Get(out, "writes.0.value").Float(); got != 14 {
		t.Errorf("Expected duration 14 in output, got %v (%s)", got, out)
	}

	f2, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f2.Close()
	if v, _ := f2.GetCellValue("Sheet1", "F5"); v != "14" {
		t.Errorf("Expected F5 = 14, got %q", v)
	}
}

func TestEditCommandMissingFile(t *testing.T) {
	_, err := execute(t, "edit", filepath.Join(t.TempDir(), "missing.xlsx"), "--cell", "E5", "--value", "4")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestTotalsCommand(t *testing.T) {
	input := newTestBook(t)

	out, err := execute(t, "totals", input, "--sheet", "Sheet1")
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}
	if got := gjson.Get(out, "laps.sum").Float(); got != 10 {
		t.Errorf("Expected laps sum 10, got %v (%s)", got, out)
	}
	if got := gjson.Get(out, "durations.sum").Float(); got != 35 {
		t.Errorf("Expected durations sum 35, got %v (%s)", got, out)
	}
	if got := gjson.Get(out, "durations.count").Int(); got != 2 {
		t.Errorf("Expected durations count 2, got %v", got)
	}

	if _, err := execute(t, "totals", input, "--sheet", "Sheet1", "--durations-region", "Minutes"); err == nil {
		t.Error("Expected error for missing durations region")
	}
}

func TestRegionsCommand(t *testing.T) {
	input := newTestBook(t)

	tests := []struct {
		sheet     string
		lapsSheet string
		lapsCol   int64
	}{
		{"Sheet1", "Sheet1", 5},
		{"Week2", "Week2", 2}, // sheet-scoped Reps wins
	}
	for _, tt := range tests {
		out, err := execute(t, "regions", input, "--sheet", tt.sheet)
		if err != nil {
			t.Fatalf("regions --sheet %s failed: %v", tt.sheet, err)
		}
		if n := gjson.Get(out, "#").Int(); n != 2 {
			t.Fatalf("Expected 2 regions for %s, got %d (%s)", tt.sheet, n, out)
		}
		if got := gjson.Get(out, "0.name").String(); got != "Reps" {
			t.Errorf("Expected Reps first, got %q", got)
		}
		if got := gjson.Get(out, "0.sheet").String(); got != tt.lapsSheet {
			t.Errorf("Expected Reps on %s for --sheet %s, got %q", tt.lapsSheet, tt.sheet, got)
		}
		if got := gjson.Get(out, "0.c1").Int(); got != tt.lapsCol {
			t.Errorf("Expected Reps column %d for --sheet %s, got %d", tt.lapsCol, tt.sheet, got)
		}
		if got := gjson.Get(out, "1.name").String(); got != "Durations" {
			t.Errorf("Expected Durations second, got %q", got)
		}
	}

	out, err := execute(t, "regions", input, "--sheet", "Sheet1", "--laps-region", "Other")
	if err != nil {
		t.Fatalf("regions --laps-region failed: %v", err)
	}
	if got := gjson.Get(out, "0.name").String(); got != "Other" {
		t.Errorf("Expected configured laps name Other, got %q", got)
	}

	out, err = execute(t, "regions", input, "--all")
	if err != nil {
		t.Fatalf("regions --all failed: %v", err)
	}
	if n := gjson.Get(out, "#").Int(); n != 4 {
		t.Errorf("Expected 4 named ranges with --all, got %d (%s)", n, out)
	}
}
