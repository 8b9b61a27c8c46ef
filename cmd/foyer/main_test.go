package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestHashCodeCommand(t *testing.T) {
	hash := strings.TrimSpace(run(t, hashCodeCmd(), "4321"))
	v, err := auth.NewVerifier(hash)
	if err != nil {
		t.Fatalf("verifier from %q: %v", hash, err)
	}
	if !v.VerifyParentCode("4321") {
		t.Error("printed hash does not verify the code")
	}
}

func TestHashCodeRejectsNonDigits(t *testing.T) {
	cmd := hashCodeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"abcd"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for non-digit code")
	}
}

func TestVAPIDKeysCommand(t *testing.T) {
	out := run(t, vapidKeysCmd())
	for _, want := range []string{"push:", "vapid_public_key: ", "vapid_private_key: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	standings := []model.Standing{
		{Rank: 1, Member: "Enfant 1", Role: model.RoleChild, Points: 40},
		{Rank: 2, Member: "Parent 1", Role: model.RoleParent, Points: 10},
	}
	progress := ledger.TreasuryProgress{Goal: ledger.Goal{Name: "Sortie Cinéma", Points: 100}, Treasury: 50, Remaining: 50}

	if err := printRanking(&buf, standings, progress); err != nil {
		t.Fatalf("printRanking: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"RANK", "Enfant 1", "40", "Treasury: 50 / 100 for Sortie Cinéma (50 to go)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
