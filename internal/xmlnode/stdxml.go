package xmlnode

import (
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"
)

// EncodingXML decodes with encoding/xml. Prefixes are kept as written and
// non UTF-8 documents are converted through x/net/html/charset.
type EncodingXML struct{}

// Decode implements Decoder
func (EncodingXML) Decode(r io.Reader) (Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var b treeBuilder
	for {
		token, err := decoder.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			attrs := make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				attrs = append(attrs, Attr{Name: rawName(a.Name), Value: a.Value})
			}
			if err := b.start(rawName(t.Name), attrs); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if err := b.end(rawName(t.Name)); err != nil {
				return nil, err
			}
		case xml.CharData:
			b.charData(string(t))
		}
	}

	return b.finish()
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
