package main

import (
	"context"
	"strings"
	"testing"

	"github.com/ArowuTest/forum-lottery-backend/internal/repositories/memory"
)

func TestImportContributions(t *testing.T) {
	csv := `target_id,position,participant_id,deleted
post-1,2,alice
post-1,3,bob,true
post-1,4,
post-1,x,carol
post-1,2,dave
post-2,2,erin
short
`
	store := memory.NewStore()
	imported, skipped, err := importContributions(context.Background(), store, strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if imported != 4 || skipped != 3 {
		t.Errorf("imported=%d skipped=%d, want 4 and 3", imported, skipped)
	}

	eligible, err := store.ListEligible(context.Background(), "post-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(eligible) != 1 || eligible[0].ID != "alice" {
		t.Errorf("eligible = %+v", eligible)
	}
}

func TestImportContributionsEmpty(t *testing.T) {
	if _, _, err := importContributions(context.Background(), memory.NewStore(), strings.NewReader("target_id,position,participant_id\n")); err == nil {
		t.Fatal("expected error for header-only file")
	}
}
