package heuristics

import "testing"

func TestDetectTableStructure(t *testing.T) {
	text := "Name\tRole\tSalary\nAlice\tEngineer\t150000\nBob\tManager\t180000"
	flags := Detect(text)
	if !flags.HasTableStructure {
		t.Error("expected HasTableStructure = true")
	}
	if flags.HasCodeStructure {
		t.Error("expected HasCodeStructure = false for tabular data")
	}
}

func TestDetectCodeStructureByKeyword(t *testing.T) {
	text := "import pandas as pd\n\ndef load():\n    return pd.read_csv('x.csv')"
	flags := Detect(text)
	if !flags.HasCodeStructure {
		t.Error("expected HasCodeStructure = true")
	}
}

func TestDetectCodeStructureBySemicolons(t *testing.T) {
	text := "int x = 1;\nint y = 2;\nint z = x + y;\nprintf(\"%d\", z);"
	flags := Detect(text)
	if !flags.HasCodeStructure {
		t.Error("expected HasCodeStructure = true from semicolon rate")
	}
}

func TestDetectPlainProseHasNoStructure(t *testing.T) {
	text := "This is just a paragraph of ordinary prose with no special shape at all."
	flags := Detect(text)
	if flags.HasTableStructure {
		t.Error("expected HasTableStructure = false")
	}
	if flags.HasCodeStructure {
		t.Error("expected HasCodeStructure = false")
	}
}

func TestDetectTracebackIsNotTable(t *testing.T) {
	text := "Traceback (most recent call last):\n  File \"analysis.py\", line 3\n    import panda as pd\nModuleNotFoundError: No module named 'panda'"
	flags := Detect(text)
	if flags.HasTableStructure {
		t.Error("expected HasTableStructure = false for a traceback")
	}
	if !flags.HasCodeStructure {
		t.Error("expected HasCodeStructure = true due to import keyword")
	}
}
