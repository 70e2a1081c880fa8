package document

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Wire representation. The node types stay immutable; YAML marshalling goes
// through these mirror structs.

type documentYAML struct {
	Title    string        `yaml:"title"`
	Sections []sectionYAML `yaml:"sections,omitempty"`
}

type sectionYAML struct {
	Name     string        `yaml:"name"`
	Entries  []entryYAML   `yaml:"entries,omitempty"`
	Sections []sectionYAML `yaml:"sections,omitempty"`
}

type entryYAML struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Decode parses a YAML document into an immutable document tree.
func Decode(data []byte) (*Document, error) {
	var raw documentYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return NewDocument(raw.Title, decodeSections(raw.Sections)), nil
}

// Encode renders a document tree back to YAML.
func Encode(doc *Document) ([]byte, error) {
	raw := documentYAML{
		Title:    doc.Title(),
		Sections: encodeSections(doc.Sections()),
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return out, nil
}

func decodeSections(raw []sectionYAML) []*Section {
	if len(raw) == 0 {
		return nil
	}
	sections := make([]*Section, 0, len(raw))
	for _, s := range raw {
		entries := make([]*Entry, 0, len(s.Entries))
		for _, e := range s.Entries {
			entries = append(entries, NewEntry(e.Key, e.Value))
		}
		sections = append(sections, NewSection(s.Name, entries, decodeSections(s.Sections)))
	}
	return sections
}

func encodeSections(sections []*Section) []sectionYAML {
	if len(sections) == 0 {
		return nil
	}
	raw := make([]sectionYAML, 0, len(sections))
	for _, s := range sections {
		entries := make([]entryYAML, 0, len(s.Entries()))
		for _, e := range s.Entries() {
			entries = append(entries, entryYAML{Key: e.Key(), Value: e.Value()})
		}
		raw = append(raw, sectionYAML{
			Name:     s.Name(),
			Entries:  entries,
			Sections: encodeSections(s.Sections()),
		})
	}
	return raw
}
