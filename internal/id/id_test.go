package id

import (
	"regexp"
	"sort"
	"testing"

	"github.com/google/uuid"
)

func TestUUID_Format(t *testing.T) {
	id := UUID()

	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !uuidRegex.MatchString(id) {
		t.Errorf("UUID() = %q, does not match UUID v4 format", id)
	}
}

func TestUUID_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := UUID()
		if seen[id] {
			t.Fatalf("UUID() generated duplicate: %s", id)
		}
		seen[id] = true
	}
}

func TestSortable_Version(t *testing.T) {
	u, err := uuid.Parse(Sortable())
	if err != nil {
		t.Fatalf("Sortable() did not parse: %v", err)
	}
	if u.Version() != 7 {
		t.Errorf("Sortable() version = %d, want 7", u.Version())
	}
}

func TestSortable_Ordered(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = Sortable()
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("Sortable() ids are not in creation order")
	}
}

func TestShort(t *testing.T) {
	id := Short()
	if len(id) != 16 {
		t.Errorf("Short() length = %d, want 16", len(id))
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(id) {
		t.Errorf("Short() = %q, want lowercase hex", id)
	}
}
