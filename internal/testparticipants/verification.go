package testparticipants

import (
	"fmt"

	"github.com/okian/santa/internal/domain/model"
)

// verify checks round-trip fidelity and the derangement property.
func verify(saved, loaded []model.Participant, assignments []model.Assignment) error {
	if len(saved) != len(loaded) {
		return fmt.Errorf("saved %d participants, loaded %d", len(saved), len(loaded))
	}
	for i := range saved {
		if saved[i] != loaded[i] {
			return fmt.Errorf("record %d changed: saved %+v, loaded %+v", i+2, saved[i], loaded[i])
		}
	}

	if len(assignments) != len(loaded) {
		return fmt.Errorf("expected %d assignments, got %d", len(loaded), len(assignments))
	}
	received := make(map[string]int, len(assignments))
	for _, a := range assignments {
		if a.GiverName == a.RecipientName {
			return fmt.Errorf("%q was assigned to themselves", a.GiverName)
		}
		received[a.RecipientName]++
	}
	for _, p := range loaded {
		if received[p.Name] != 1 {
			return fmt.Errorf("%q receives %d gifts", p.Name, received[p.Name])
		}
	}
	return nil
}
