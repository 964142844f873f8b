package xmlnode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muktihari/xmltokenizer"
)

var (
	cdataOpen    = []byte("<![CDATA[")
	cdataClose   = []byte("]]>")
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	procOpen     = []byte("<?")
	procClose    = []byte("?>")
)

// Tokenizer decodes with muktihari/xmltokenizer. It is faster than
// EncodingXML on large tracks but only accepts UTF-8 input.
//
// The document is normalized and then split with RawToken, which returns a
// tag together with the character data following it. Tags are parsed here
// since Token does not honour quotes around '/' and '=' inside attribute
// values.
type Tokenizer struct{}

// Decode implements Decoder
func (Tokenizer) Decode(r io.Reader) (Node, error) {
	doc, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err = normalize(doc)
	if err != nil {
		return nil, err
	}

	// a single token may span the whole document
	tok := xmltokenizer.New(bytes.NewReader(doc),
		xmltokenizer.WithAutoGrowBufferMaxLimitSize(max(len(doc)+16<<10, 1000<<10)))

	var b treeBuilder
	for {
		raw, err := tok.RawToken()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if len(raw) > 0 {
			if perr := decodeRaw(&b, raw); perr != nil {
				return nil, perr
			}
		}
		if err != nil {
			break
		}
	}

	return b.finish()
}

func decodeRaw(b *treeBuilder, raw []byte) error {
	// text outside the root and directives
	if raw[0] != '<' || (len(raw) > 1 && raw[1] == '!') {
		return nil
	}

	end := tagEnd(raw)
	if end < 0 {
		return fmt.Errorf("unterminated tag %q", raw)
	}
	tag, err := parseTag(raw[:end+1])
	if err != nil {
		return err
	}

	switch {
	case tag.end:
		if err := b.end(tag.name); err != nil {
			return err
		}
	default:
		if err := b.start(tag.name, tag.attrs); err != nil {
			return err
		}
		if tag.selfClosing {
			if err := b.end(tag.name); err != nil {
				return err
			}
		}
	}

	if data := raw[end+1:]; len(data) > 0 {
		text, err := unescape(data)
		if err != nil {
			return err
		}
		b.charData(text)
	}
	return nil
}

type rawTag struct {
	name        string
	attrs       []Attr
	end         bool
	selfClosing bool
}

// tagEnd returns the index of the '>' closing the tag at the start of raw
func tagEnd(raw []byte) int {
	var quote byte
	for i, c := range raw {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

const space = " \t\r\n"

// parseTag parses "<name attr="v">", "</name>" or "<name/>"
func parseTag(tag []byte) (rawTag, error) {
	var t rawTag
	body := tag[1 : len(tag)-1]
	if len(body) > 0 && body[0] == '/' {
		t.end = true
		body = body[1:]
	}
	if n := len(body); n > 0 && body[n-1] == '/' {
		t.selfClosing = true
		body = body[:n-1]
	}

	i := bytes.IndexAny(body, space)
	if i < 0 {
		i = len(body)
	}
	t.name = string(body[:i])
	if t.name == "" {
		return t, fmt.Errorf("malformed tag %q", tag)
	}

	rest := body[i:]
	for {
		rest = bytes.TrimLeft(rest, space)
		if len(rest) == 0 {
			break
		}
		eq := bytes.IndexByte(rest, '=')
		if eq <= 0 {
			return t, fmt.Errorf("malformed attribute in tag %q", tag)
		}
		name := string(bytes.TrimRight(rest[:eq], space))
		rest = bytes.TrimLeft(rest[eq+1:], space)
		if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
			return t, fmt.Errorf("unquoted attribute %s in tag %q", name, tag)
		}
		closing := bytes.IndexByte(rest[1:], rest[0])
		if closing < 0 {
			return t, fmt.Errorf("unterminated attribute %s in tag %q", name, tag)
		}
		value, err := unescape(rest[1 : 1+closing])
		if err != nil {
			return t, err
		}
		t.attrs = append(t.attrs, Attr{Name: name, Value: value})
		rest = rest[closing+2:]
	}
	return t, nil
}

var entities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// unescape resolves the five predefined XML entities and numeric character
// references. Anything else is an error, as with encoding/xml.
func unescape(b []byte) (string, error) {
	if bytes.IndexByte(b, '&') < 0 {
		return string(b), nil
	}

	var sb strings.Builder
	for len(b) > 0 {
		amp := bytes.IndexByte(b, '&')
		if amp < 0 {
			sb.Write(b)
			break
		}
		sb.Write(b[:amp])
		b = b[amp+1:]

		semi := bytes.IndexByte(b, ';')
		if semi <= 0 {
			return "", fmt.Errorf("invalid character entity &%s", truncate(b))
		}
		ref := string(b[:semi])
		b = b[semi+1:]

		if s, ok := entities[ref]; ok {
			sb.WriteString(s)
			continue
		}
		if ref[0] != '#' {
			return "", fmt.Errorf("invalid character entity &%s;", ref)
		}
		var (
			n   uint64
			err error
		)
		if strings.HasPrefix(ref, "#x") {
			n, err = strconv.ParseUint(ref[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(ref[1:], 10, 32)
		}
		if err != nil || !utf8.ValidRune(rune(n)) {
			return "", fmt.Errorf("invalid character entity &%s;", ref)
		}
		sb.WriteRune(rune(n))
	}
	return sb.String(), nil
}

func truncate(b []byte) string {
	if len(b) > 10 {
		b = b[:10]
	}
	return string(b)
}

// normalize rewrites doc into the form RawToken splits correctly. Comments
// and processing instructions are removed, CDATA sections are escaped and
// '>' inside attribute values becomes &gt;.
func normalize(doc []byte) ([]byte, error) {
	out := make([]byte, 0, len(doc)+len(doc)/16)
	for {
		i := bytes.IndexByte(doc, '<')
		if i < 0 {
			return append(out, doc...), nil
		}
		out = append(out, doc[:i]...)
		doc = doc[i:]

		switch {
		case bytes.HasPrefix(doc, cdataOpen):
			end := bytes.Index(doc, cdataClose)
			if end < 0 {
				return nil, errors.New("unterminated CDATA section")
			}
			out = appendEscaped(out, doc[len(cdataOpen):end])
			doc = doc[end+len(cdataClose):]
		case bytes.HasPrefix(doc, commentOpen):
			end := bytes.Index(doc[len(commentOpen):], commentClose)
			if end < 0 {
				return nil, errors.New("unterminated comment")
			}
			doc = doc[len(commentOpen)+end+len(commentClose):]
		case bytes.HasPrefix(doc, procOpen):
			end := bytes.Index(doc, procClose)
			if end < 0 {
				return nil, errors.New("unterminated processing instruction")
			}
			doc = doc[end+len(procClose):]
		default:
			end := tagEnd(doc)
			if end < 0 {
				// RawToken reports the truncated tag
				return append(out, doc...), nil
			}
			out = appendTag(out, doc[:end+1])
			doc = doc[end+1:]
		}
	}
}

func appendEscaped(out, text []byte) []byte {
	for _, c := range text {
		switch c {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, c)
		}
	}
	return out
}

func appendTag(out, tag []byte) []byte {
	var quote byte
	for _, c := range tag {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '>' {
				out = append(out, "&gt;"...)
				continue
			}
		case c == '"' || c == '\'':
			quote = c
		}
		out = append(out, c)
	}
	return out
}
