package main

import (
	"encoding/json"
	"testing"

	"posecorpus/internal/services"
)

func TestSplitCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{
		"split", "--total", "10", "--seed", "7", "--train-size", "4", "--devtest-size", "2", "--json", "--indices",
	}, env.configPath)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	var payload splitJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if payload.Total != 10 || payload.Seed != 7 {
		t.Fatalf("unexpected header %+v", payload)
	}
	for subset, want := range map[string]int{"train": 4, "dev": 2, "test": 2, "excluded": 2} {
		if payload.Counts[subset] != want {
			t.Fatalf("%s = %d, want %d (%v)", subset, payload.Counts[subset], want, payload.Counts)
		}
		if subset != "excluded" && len(payload.Indices[subset]) != want {
			t.Fatalf("%s indices = %v", subset, payload.Indices[subset])
		}
	}

	again, _, err := runCLI(t, []string{
		"split", "--total", "10", "--seed", "7", "--train-size", "4", "--devtest-size", "2", "--json", "--indices",
	}, env.configPath)
	if err != nil {
		t.Fatalf("split again: %v", err)
	}
	if again != out {
		t.Fatal("expected identical output for the same seed")
	}
}

func TestSplitCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"split", "-n", "20", "--train-size", "4", "--devtest-size", "3", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	requireContains(t, out, "excluded")
	requireContains(t, out, "Dry run: a build stops after example 10")
}

func TestSplitCommandRejectsImpossibleSizes(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"split", "--total", "3", "--devtest-size", "2"}, env.configPath)
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected configuration exit code, got %v", err)
	}
}
