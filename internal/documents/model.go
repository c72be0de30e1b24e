package documents

import (
	"encoding/json"
	"time"
)

// Document represents an uploaded document owned by a user.
type Document struct {
	ID          string
	UserID      string
	FileName    string
	ContentType string
	StorageKey  string
	Content     string
	Metadata    Metadata
	CreatedAt   time.Time
}

// Metadata is persisted as a JSON object. Keys other than size and
// parsed_elements_count are preserved in Extra.
type Metadata struct {
	Size                int64
	ParsedElementsCount int
	Extra               map[string]any
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["size"] = m.Size
	out["parsed_elements_count"] = m.ParsedElementsCount
	return json.Marshal(out)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range raw {
		switch k {
		case "size":
			if err := json.Unmarshal(v, &m.Size); err != nil {
				return err
			}
		case "parsed_elements_count":
			if err := json.Unmarshal(v, &m.ParsedElementsCount); err != nil {
				return err
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = val
		}
	}
	return nil
}
