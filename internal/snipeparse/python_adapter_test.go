package snipeparse

import "testing"

func TestExtractPythonAnnotatedAssignmentTypeMismatch(t *testing.T) {
	src := []byte("balance: float = 3.14\n")
	result, err := pyAdapter.Extract("b.py", src)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	var found bool
	for _, s := range result.Symbols {
		if s.Name == "balance" && s.DeclaredType == "float" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected annotated symbol balance:float, got %+v", result.Symbols)
	}
}

func TestExtractPythonStarImportSetsFlag(t *testing.T) {
	src := []byte("from os import *\n")
	result, err := pyAdapter.Extract("m.py", src)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	var found bool
	for _, s := range result.Symbols {
		if s.StarImport {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a StarImport symbol, got %+v", result.Symbols)
	}
}

func TestExtractPythonCallArgCount(t *testing.T) {
	src := []byte("compute(1, 2)\n")
	result, err := pyAdapter.Extract("call.py", src)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	var found bool
	for _, r := range result.References {
		if r.Name == "compute" && r.ArgCount == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a call reference to compute with ArgCount 2, got %+v", result.References)
	}
}
