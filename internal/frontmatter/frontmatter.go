package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Style captures the newline shape of a document so callers that care about
// byte-stable handling can reason about it.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Decoder deserializes a raw front-matter block into out. The default is
// YAMLDecoder; alternative structured formats plug in here.
type Decoder func(block []byte, out any) error

// YAMLDecoder decodes a YAML front-matter block.
func YAMLDecoder(block []byte, out any) error {
	if len(block) == 0 {
		return nil
	}
	return yaml.Unmarshal(block, out)
}

// ErrMissingClosingDelimiter indicates the document started with a
// front-matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// Split separates a `---` delimited front-matter block from the document body.
//
// If the document does not start with a delimiter, had is false and body is
// the full input.
func Split(content []byte) (block []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	blockStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[blockStart:], closeLine) {
		bodyStart := blockStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[blockStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	blockEnd := blockStart + idx + len(nl)
	bodyStart := blockStart + idx + len(closeSeq)
	return content[blockStart:blockEnd], content[bodyStart:], true, style, nil
}

// Extract splits content and decodes the front-matter block into out using
// dec (YAMLDecoder when nil). The returned body has the block and the blank
// lines immediately following it removed. A decode failure still returns the
// stripped body alongside the error: the block is structurally present, only
// its contents are unusable. A missing closing delimiter returns a nil body;
// callers decide the degradation policy.
func Extract(content []byte, dec Decoder, out any) (body []byte, err error) {
	if dec == nil {
		dec = YAMLDecoder
	}

	block, body, had, _, err := Split(content)
	if err != nil {
		return nil, err
	}
	if !had {
		// No block: the entire text is the body, untouched.
		return body, nil
	}
	body = trimLeadingBlank(body)
	if err := dec(block, out); err != nil {
		return body, err
	}
	return body, nil
}

func trimLeadingBlank(body []byte) []byte {
	return bytes.TrimLeft(body, " \t\r\n")
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
