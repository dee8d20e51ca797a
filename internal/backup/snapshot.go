package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/model"
)

const snapshotFormat = 1

// Snapshot is the plaintext content of one backup: every collection in full.
type Snapshot struct {
	Format     int               `json:"format"`
	TakenAt    time.Time         `json:"taken_at"`
	FoodItems  []model.FoodItem  `json:"foodItems"`
	DietPlans  []model.DietPlan  `json:"dietPlans"`
	DietOrders []model.DietOrder `json:"dietOrders"`
}

// Collections are the stores a snapshot is taken from and restored into.
type Collections struct {
	FoodItems  *collection.Store[model.FoodItem]
	DietPlans  *collection.Store[model.DietPlan]
	DietOrders *collection.Store[model.DietOrder]
}

func (c Collections) take() Snapshot {
	return Snapshot{
		Format:     snapshotFormat,
		TakenAt:    time.Now().UTC(),
		FoodItems:  c.FoodItems.Get(),
		DietPlans:  c.DietPlans.Get(),
		DietOrders: c.DietOrders.Get(),
	}
}

// replace overwrites every collection with the snapshot content.
func (c Collections) replace(s Snapshot) {
	c.FoodItems.Set(s.FoodItems)
	c.DietPlans.Set(s.DietPlans)
	c.DietOrders.Set(s.DietOrders)
}

func (s Snapshot) counts() model.SnapshotCounts {
	return model.SnapshotCounts{
		FoodItems:  len(s.FoodItems),
		DietPlans:  len(s.DietPlans),
		DietOrders: len(s.DietOrders),
	}
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses and checks a snapshot before anything is replaced.
func decodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Format != snapshotFormat {
		return Snapshot{}, fmt.Errorf("unsupported snapshot format %d", s.Format)
	}
	if err := s.check(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// check rejects records whose enumerated fields hold values the forms could
// never have produced.
func (s Snapshot) check() error {
	for _, f := range s.FoodItems {
		if !f.Type.Valid() {
			return fmt.Errorf("snapshot food item %d has unknown type %q", f.ID, f.Type)
		}
		for _, d := range f.DaysAvailable {
			if !model.ValidWeekday(d) {
				return fmt.Errorf("snapshot food item %d has unknown day %q", f.ID, d)
			}
		}
	}
	for _, p := range s.DietPlans {
		if !p.DietType.Valid() {
			return fmt.Errorf("snapshot diet plan %d has unknown diet type %q", p.ID, p.DietType)
		}
	}
	for _, o := range s.DietOrders {
		if !o.Status.Valid() {
			return fmt.Errorf("snapshot order %d has unknown status %q", o.ID, o.Status)
		}
		if !o.Sex.Valid() {
			return fmt.Errorf("snapshot order %d has unknown sex %q", o.ID, o.Sex)
		}
	}
	return nil
}
