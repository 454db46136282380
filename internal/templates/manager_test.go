package templates

import "testing"

func TestPlayerManagerCreateAndExists(t *testing.T) {
	dir := t.TempDir()
	m := NewPlayerManager(dir)

	ref, err := m.Create("Sir Reginald")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Slug != "sir-reginald" {
		t.Fatalf("got slug %q", ref.Slug)
	}
	if !m.Exists(ref.Slug) {
		t.Fatal("expected slug to exist")
	}
	if got := m.GetRef(ref.Slug); got != "players/sir-reginald" {
		t.Fatalf("got ref %q", got)
	}
}

func TestPlayerManagerListSortsBySlug(t *testing.T) {
	dir := t.TempDir()
	m := NewPlayerManager(dir)
	if _, err := m.Create("Zed"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("Anna"); err != nil {
		t.Fatal(err)
	}
	refs := m.List()
	if len(refs) != 2 {
		t.Fatalf("got %d refs", len(refs))
	}
	if refs[0].Slug != "anna" || refs[1].Slug != "zed" {
		t.Fatalf("not sorted by slug: %+v", refs)
	}
}

func TestWorldManagerCreateAtSlugNoCollisionProbe(t *testing.T) {
	dir := t.TempDir()
	m := NewWorldManager(dir)
	ref, err := m.CreateAtSlug("restored-world")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Slug != "restored-world" {
		t.Fatalf("got %q", ref.Slug)
	}
	if !m.Exists("restored-world") {
		t.Fatal("expected directory to exist")
	}
}

func TestManagerGetRefRejectsUnsafeSlug(t *testing.T) {
	dir := t.TempDir()
	m := NewPlayerManager(dir)
	if got := m.GetRef("../../etc"); got != "" {
		t.Fatalf("expected empty ref for unsafe slug, got %q", got)
	}
}

func TestDisplayNameFromTemplateH1(t *testing.T) {
	dir := t.TempDir()
	m := NewPlayerManager(dir)
	ref, err := m.Create("Temp")
	if err != nil {
		t.Fatal(err)
	}
	if ref.DisplayName != "Unnamed Adventurer" {
		t.Fatalf("got %q", ref.DisplayName)
	}
}
