package services

import (
	"testing"
)

type subRow struct {
	po   string
	line string
	day  int
	name string
}

func assignRows(rows []subRow) []subRow {
	return AssignSublines(rows,
		func(r subRow) (string, string) { return r.po + "|" + r.line, r.line },
		func(a, b subRow) bool { return a.day < b.day },
		func(r subRow, name string) subRow { r.name = name; return r },
	)
}

func TestAssignSublines_NamesGroupsInSortOrder(t *testing.T) {
	rows := []subRow{
		{po: "PO1", line: "10", day: 3},
		{po: "PO1", line: "10", day: 1},
		{po: "PO1", line: "20", day: 5},
		{po: "PO2", line: "10", day: 2},
		{po: "PO1", line: "10", day: 2},
	}

	out := assignRows(rows)
	if len(out) != len(rows) {
		t.Fatalf("Expected %d rows, got %d", len(rows), len(out))
	}

	expected := []struct {
		po   string
		day  int
		name string
	}{
		{"PO1", 1, "10-1"},
		{"PO1", 2, "10-2"},
		{"PO1", 3, "10-3"},
		{"PO1", 5, "20"},
		{"PO2", 2, "10"},
	}
	for i, e := range expected {
		if out[i].po != e.po || out[i].day != e.day || out[i].name != e.name {
			t.Errorf("row %d: got %+v, want %+v", i, out[i], e)
		}
	}

	// input untouched
	if rows[0].name != "" {
		t.Errorf("AssignSublines must not modify its input")
	}
}

func TestAssignSublines_Stable(t *testing.T) {
	rows := []subRow{
		{po: "PO1", line: "1", day: 4},
		{po: "PO1", line: "1", day: 4},
		{po: "PO1", line: "1", day: 1},
	}
	first := assignRows(rows)
	second := assignRows(rows)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Expected deterministic output, row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBaseLine(t *testing.T) {
	tests := map[string]string{
		"10":     "10",
		"10-2":   "10",
		"10-2-1": "10",
		"":       "",
	}
	for in, want := range tests {
		if got := BaseLine(in); got != want {
			t.Errorf("BaseLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLineComparator_Compare(t *testing.T) {
	lc := NewLineComparator()

	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"equal_lines", "10", "10", 0},
		{"numeric_base", "9", "10", -1},
		{"sub_after_base", "10", "10-1", -1},
		{"numeric_sub", "10-2", "10-10", -1},
		{"greater_base", "20-1", "10-9", 1},
		{"invalid_format_fallback", "A", "10", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lc.Compare(tt.a, tt.b); got != tt.expected {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}
