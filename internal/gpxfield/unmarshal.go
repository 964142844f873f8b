package gpxfield

import (
	"github.com/planbiir/gpxkit/internal/xmlnode"
)

// Unmarshal builds a new entity from node using the table for version.
// A group whose element is missing pushes nil so that later fields of the
// group are skipped, except attributes which are then read from node itself.
func Unmarshal[T any](s *Schema[T], node xmlnode.Node, version string) (*T, error) {
	e := s.New()
	path := []xmlnode.Node{node}

	for _, f := range s.Fields(version) {
		current := path[len(path)-1]
		d := f.desc()

		switch d.kind {
		case kindGroupStart:
			if current == nil {
				path = append(path, nil)
			} else {
				path = append(path, current.FirstChild(d.tag))
			}
			continue
		case kindGroupEnd:
			path = path[:len(path)-1]
			continue
		}

		var err error
		switch {
		case current != nil:
			err = f.unmarshal(e, current, version)
		case d.attr != "":
			err = f.unmarshal(e, node, version)
		}
		if err != nil {
			return nil, err
		}
	}

	return e, nil
}
