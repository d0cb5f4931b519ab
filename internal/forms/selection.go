package forms

import "encoding/json"

// Selection is an ordered set of ids picked in a form, e.g. the
// functionalities granted to an owner or partner.
type Selection struct {
	ids []int64
}

// NewSelection seeds a selection, dropping duplicates.
func NewSelection(ids ...int64) *Selection {
	s := &Selection{}
	for _, id := range ids {
		if !s.Has(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Has reports whether id is selected.
func (s *Selection) Has(id int64) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Toggle appends id when absent and removes it when present.
func (s *Selection) Toggle(id int64) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, id)
}

// IDs returns the selected ids in the order they were picked.
func (s *Selection) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// OrDefault returns IDs, or fallback when nothing is selected.
func (s *Selection) OrDefault(fallback ...int64) []int64 {
	if len(s.ids) == 0 {
		return NewSelection(fallback...).IDs()
	}
	return s.IDs()
}

func (s *Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = *NewSelection(ids...)
	return nil
}
