package manager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/notify"
	"github.com/starford/mannaz/internal/testutil"
)

func testManager(t *testing.T, files map[string]string) (*Manager, string) {
	t.Helper()
	dir, store := testutil.TestProfileDir(t, files)
	m := New(store, testutil.TestLogger())
	t.Cleanup(m.Shutdown)
	return m, dir
}

func readIndex(t *testing.T, dir string) models.Index {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, IndexFileName))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var idx models.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	return idx
}

func TestInitialize_LoadsAndWritesIndex(t *testing.T) {
	m, dir := testManager(t, map[string]string{
		"first.md":  "# First\n\nOne.\n\n## A\n\n## B\n",
		"second.md": "# Second\n\n- [ ] task\n",
		"other.txt": "ignored",
	})

	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].ID != "first" || list[1].ID != "second" {
		t.Errorf("list order = %v", list)
	}
	if list[0].SectionCount != 3 {
		t.Errorf("first sectionCount = %d, want 3", list[0].SectionCount)
	}
	if list[1].ChecklistCount != 1 {
		t.Errorf("second checklistCount = %d, want 1", list[1].ChecklistCount)
	}

	idx := readIndex(t, dir)
	if idx.ProfileCount != 2 || len(idx.Profiles) != 2 {
		t.Errorf("index = %+v", idx)
	}
}

func TestInitialize_EmptyDirectory(t *testing.T) {
	m, dir := testManager(t, nil)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := m.List(); len(got) != 0 {
		t.Errorf("list = %v, want empty", got)
	}
	idx := readIndex(t, dir)
	if idx.ProfileCount != 0 {
		t.Errorf("profileCount = %d, want 0", idx.ProfileCount)
	}
	if idx.Profiles == nil {
		t.Error("index profiles should be an empty array, not null")
	}
}

func TestInitialize_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	store := testutil.StoreAt(t, dir)
	m := New(store, testutil.TestLogger())
	t.Cleanup(m.Shutdown)

	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize against missing dir: %v", err)
	}
	if got := m.List(); len(got) != 0 {
		t.Errorf("list = %v, want empty", got)
	}
}

func TestAccessors(t *testing.T) {
	m, _ := testManager(t, map[string]string{
		"tasks.md": "# Tasks\n\nDo things.\n\n- [ ] one\n- [x] two\n",
		"bare.md":  "# Bare\n",
	})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}

	s, ok := m.Get("tasks")
	if !ok {
		t.Fatal("tasks not found")
	}
	if s.Name != "Tasks" || s.ChecklistCount != 2 {
		t.Errorf("summary = %+v", s)
	}
	if _, ok := m.Get("nope"); ok {
		t.Error("Get(nope) should report absent")
	}

	content, ok := m.Content("tasks")
	if !ok || content != "# Tasks\n\nDo things.\n\n- [ ] one\n- [x] two\n" {
		t.Errorf("content = %q, ok = %v", content, ok)
	}
	if _, ok := m.Content("nope"); ok {
		t.Error("Content(nope) should report absent")
	}

	items, ok := m.Checklist("tasks")
	if !ok || len(items) != 2 || items[1] != "[x] two" {
		t.Errorf("checklist = %v, ok = %v", items, ok)
	}

	// Loaded profile without items: non-nil empty slice.
	items, ok = m.Checklist("bare")
	if !ok {
		t.Fatal("bare not found")
	}
	if items == nil || len(items) != 0 {
		t.Errorf("checklist = %#v, want empty non-nil slice", items)
	}

	// Unknown id: absent, nil.
	if items, ok := m.Checklist("nope"); ok || items != nil {
		t.Errorf("Checklist(nope) = %v, %v", items, ok)
	}
}

func TestChecklistReturnsCopy(t *testing.T) {
	m, _ := testManager(t, map[string]string{"a.md": "- [ ] keep\n"})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	items, _ := m.Checklist("a")
	items[0] = "mutated"
	again, _ := m.Checklist("a")
	if again[0] != "[ ] keep" {
		t.Error("Checklist must not expose internal state")
	}
}

func TestReload_PicksUpChangesAndNotifies(t *testing.T) {
	m, dir := testManager(t, map[string]string{"a.md": "# A\n"})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	if err := os.WriteFile(filepath.Join(dir, "b.md"), []byte("# B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	summaries, err := m.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}

	select {
	case ev := <-ch:
		if ev.Type != notify.TypeProfilesReloaded {
			t.Errorf("event type = %q", ev.Type)
		}
		if len(ev.Profiles) != 2 {
			t.Errorf("event profiles = %v", ev.Profiles)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reload event")
	}

	idx := readIndex(t, dir)
	if idx.ProfileCount != 2 {
		t.Errorf("index profileCount = %d, want 2", idx.ProfileCount)
	}
}

func TestReload_RemovedFileDropsProfile(t *testing.T) {
	m, dir := testManager(t, map[string]string{
		"a.md": "# A\n",
		"b.md": "# B\n",
	})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "b.md")); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := m.Get("b"); ok {
		t.Error("b should be gone after reload")
	}
	if len(m.List()) != 1 {
		t.Errorf("list = %v", m.List())
	}
}

func TestReload_OneEventPerCall(t *testing.T) {
	m, _ := testManager(t, map[string]string{"a.md": "# A\n"})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	if _, err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reload(); err != nil {
		t.Fatal(err)
	}

	got := 0
	deadline := time.After(time.Second)
	for got < 2 {
		select {
		case <-ch:
			got++
		case <-deadline:
			t.Fatalf("received %d events, want 2", got)
		}
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestReload_IndexWriteFailureKeepsMapping(t *testing.T) {
	m, dir := testManager(t, map[string]string{"a.md": "# A\n"})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	// A directory squatting on the index name makes the atomic rename fail.
	if err := os.Remove(filepath.Join(dir, IndexFileName)); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, IndexFileName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.md"), []byte("# B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	summaries, err := m.Reload()
	if err == nil {
		t.Fatal("expected index write error")
	}
	if len(summaries) != 2 {
		t.Errorf("len(summaries) = %d, want 2", len(summaries))
	}

	// The fresh mapping stays in place despite the failed index write.
	if _, ok := m.Get("b"); !ok {
		t.Error("mapping rolled back on index write failure")
	}
	if len(m.List()) != 2 {
		t.Errorf("list = %v", m.List())
	}

	// The reload event is still delivered.
	select {
	case ev := <-ch:
		if len(ev.Profiles) != 2 {
			t.Errorf("event profiles = %v", ev.Profiles)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reload event")
	}
}

func TestListStableWithoutReload(t *testing.T) {
	m, _ := testManager(t, map[string]string{
		"c.md": "# C\n",
		"a.md": "# A\n",
		"b.md": "# B\n",
	})
	if err := m.Initialize(); err != nil {
		t.Fatal(err)
	}
	first := m.List()
	second := m.List()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("list order unstable: %v vs %v", first, second)
		}
	}
}
