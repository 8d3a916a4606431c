// Package registry keeps the list of rooms known to exist. The calendar feed
// only mentions rooms that have lessons scheduled, so without this list a
// room with an empty day would silently vanish instead of showing as free.
package registry

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/samber/lo"

	"aulepi/internal/model"
)

type entry struct {
	Building string
	Room     string
}

// Registry seeds known lesson-less rooms into a raw snapshot and records
// rooms seen for the first time, so the list grows as the feed mentions new
// spaces.
type Registry interface {
	Seed(raw *model.RawSnapshot, coordinates map[string][2]float64)
	Record(raw model.RawSnapshot) (added int, err error)
}

// NewRegistry loads the CSV room list at path. A missing file is an empty
// registry, not an error; Record creates it.
func NewRegistry(path string) (Registry, error) {
	r := &fileRegistry{path: path, known: map[entry]bool{}}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

type fileRegistry struct {
	mu      sync.Mutex
	path    string
	entries []entry
	known   map[entry]bool
}

var header = []string{"building", "room", "usually_open"}

func (r *fileRegistry) load() error {
	file, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return fmt.Errorf("cannot read room registry: %w", err)
	}

	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		r.add(entry{Building: record[0], Room: record[1]})
	}
	return nil
}

func (r *fileRegistry) add(e entry) bool {
	if r.known[e] {
		return false
	}
	r.known[e] = true
	r.entries = append(r.entries, e)
	return true
}

// Seed adds every known room missing from the snapshot with an empty lesson
// list. Buildings absent from the snapshot are created when their
// coordinates are known, otherwise the room cannot be placed and is skipped.
func (r *fileRegistry) Seed(raw *model.RawSnapshot, coordinates map[string][2]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := make(map[string]int, len(raw.Buildings))
	for i, building := range raw.Buildings {
		index[building.Code] = i
	}

	for _, e := range r.entries {
		i, ok := index[e.Building]
		if !ok {
			coords, located := coordinates[e.Building]
			if !located {
				continue
			}
			raw.Buildings = append(raw.Buildings, model.RawBuilding{
				Code:        e.Building,
				Coordinates: coords,
				Rooms:       map[string][]model.RawLesson{},
			})
			i = len(raw.Buildings) - 1
			index[e.Building] = i
		}

		if raw.Buildings[i].Rooms == nil {
			raw.Buildings[i].Rooms = map[string][]model.RawLesson{}
		}
		if _, present := raw.Buildings[i].Rooms[e.Room]; !present {
			raw.Buildings[i].Rooms[e.Room] = []model.RawLesson{}
		}
	}
}

// Record persists rooms the snapshot mentions that the registry has never
// seen. The whole file is rewritten only when something changed.
func (r *fileRegistry) Record(raw model.RawSnapshot) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, building := range raw.Buildings {
		rooms := lo.Keys(building.Rooms)
		slices.Sort(rooms)
		for _, room := range rooms {
			if r.add(entry{Building: building.Code, Room: room}) {
				added++
			}
		}
	}
	if added == 0 {
		return 0, nil
	}

	file, err := os.Create(r.path)
	if err != nil {
		return added, err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return added, err
	}
	for _, e := range r.entries {
		if err := writer.Write([]string{e.Building, e.Room, "True"}); err != nil {
			return added, err
		}
	}
	writer.Flush()
	return added, writer.Error()
}
