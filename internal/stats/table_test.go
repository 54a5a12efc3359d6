package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Class", "Mean ms", "Count"}
	rows := [][]string{
		{"letter", "182", "12"},
		{"newline", "310", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Class   Mean ms Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "letter      182    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "newline     310     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable(nil, [][]string{{"字", "x"}, {"ab", "y"}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "字 x" || lines[1] != "ab y" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %q", lines)
	}
}
