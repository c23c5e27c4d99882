package steam

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

// VDFMap is a parsed Valve key-value block. Values are strings or nested VDFMaps.
type VDFMap map[string]any

// Map returns the nested block under key
func (m VDFMap) Map(key string) (VDFMap, bool) {
	v, ok := m[key].(VDFMap)
	return v, ok
}

// String returns the string value under key
func (m VDFMap) String(key string) string {
	v, _ := m[key].(string)
	return v
}

// Uint returns the numeric value under key, or 0 when absent or not a number
func (m VDFMap) Uint(key string) uint64 {
	n, err := strconv.ParseUint(m.String(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseVDF reads Valve key-value text (libraryfolders.vdf, *.acf) from r.
// Several top-level keys are allowed; "//" comments are skipped.
func ParseVDF(r io.Reader) (VDFMap, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	scanner.Split(scanVDFTokens)

	var tokens []vdfToken
	for scanner.Scan() {
		text := scanner.Text()
		tokens = append(tokens, vdfToken{text: text, brace: text == "{" || text == "}"})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vdf: %w", err)
	}

	p := &vdfParser{tokens: tokens}
	root, err := p.block(false)
	if err != nil {
		return nil, err
	}
	return root, nil
}

type vdfToken struct {
	text  string
	brace bool
}

type vdfParser struct {
	tokens []vdfToken
	pos    int
}

// block reads pairs until "}" (nested) or end of input (top level)
func (p *vdfParser) block(nested bool) (VDFMap, error) {
	out := make(VDFMap)
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.brace && tok.text == "}" {
			if !nested {
				return nil, fmt.Errorf("vdf: unexpected }")
			}
			p.pos++
			return out, nil
		}
		if tok.brace {
			return nil, fmt.Errorf("vdf: unexpected {")
		}
		key := tok.text
		p.pos++
		if p.pos >= len(p.tokens) {
			return nil, fmt.Errorf("vdf: unexpected end after key %q", key)
		}

		next := p.tokens[p.pos]
		switch {
		case next.brace && next.text == "{":
			p.pos++
			inner, err := p.block(true)
			if err != nil {
				return nil, err
			}
			out[key] = inner
		case next.brace:
			return nil, fmt.Errorf("vdf: missing value for key %q", key)
		default:
			out[key] = next.text
			p.pos++
		}
	}
	if nested {
		return nil, fmt.Errorf("vdf: unclosed block")
	}
	return out, nil
}

// scanVDFTokens yields quoted strings (without quotes), bare words, and single braces
func scanVDFTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for {
		for start < len(data) && unicode.IsSpace(rune(data[start])) {
			start++
		}
		// line comment
		if start+1 < len(data) && data[start] == '/' && data[start+1] == '/' {
			end := start + 2
			for end < len(data) && data[end] != '\n' {
				end++
			}
			if end >= len(data) && !atEOF {
				return 0, nil, nil
			}
			start = end
			continue
		}
		break
	}
	if start >= len(data) {
		if atEOF {
			return start, nil, nil
		}
		return 0, nil, nil
	}
	data = data[start:]

	switch data[0] {
	case '"':
		for i := 1; i < len(data); i++ {
			if data[i] == '\\' && i+1 < len(data) {
				i++
				continue
			}
			if data[i] == '"' {
				return start + i + 1, unescape(data[1:i]), nil
			}
		}
		if atEOF {
			return 0, nil, fmt.Errorf("vdf: unclosed quote")
		}
		return 0, nil, nil
	case '{', '}':
		return start + 1, data[:1], nil
	}

	i := 0
	for i < len(data) && !unicode.IsSpace(rune(data[i])) && data[i] != '"' && data[i] != '{' && data[i] != '}' {
		i++
	}
	if i == len(data) && !atEOF {
		return 0, nil, nil
	}
	return start + i, data[:i], nil
}

// unescape resolves the backslash escapes Steam writes in paths
func unescape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) {
			i++
			switch b[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, b[i])
			}
			continue
		}
		out = append(out, b[i])
	}
	return out
}

// AppManifest holds the fields of an appmanifest_*.acf file used here
type AppManifest struct {
	AppID      string
	Name       string
	InstallDir string
}

// ParseAppManifest parses an appmanifest_*.acf file
func ParseAppManifest(r io.Reader) (AppManifest, error) {
	root, err := ParseVDF(r)
	if err != nil {
		return AppManifest{}, err
	}
	state, ok := root.Map("AppState")
	if !ok {
		return AppManifest{}, fmt.Errorf("vdf: missing AppState")
	}
	return AppManifest{
		AppID:      state.String("appid"),
		Name:       state.String("name"),
		InstallDir: state.String("installdir"),
	}, nil
}

// libraryPaths extracts library paths from a parsed libraryfolders.vdf.
// Entries are keyed "0", "1", ... and carry a "path".
func libraryPaths(root VDFMap) []string {
	lf, ok := root.Map("libraryfolders")
	if !ok {
		return nil
	}
	var paths []string
	for i := 0; ; i++ {
		entry, ok := lf.Map(strconv.Itoa(i))
		if !ok {
			break
		}
		if p := entry.String("path"); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
