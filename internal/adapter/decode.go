package adapter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Format names an input file format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCoNLLU Format = "conllu"
)

// ValidFormats lists the accepted input formats.
var ValidFormats = []string{string(FormatJSON), string(FormatCoNLLU)}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".conllu", ".conll":
		return FormatCoNLLU, nil
	}
	return "", fmt.Errorf("%s: cannot infer input format from extension (want .json, .conllu or .conll)", path)
}

// ParseFormat validates a format name given on the command line.
// The empty string means "infer from the extension".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "":
		return "", nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCoNLLU, "conll":
		return FormatCoNLLU, nil
	}
	return "", fmt.Errorf("unknown input format %q (valid: %s)", s, strings.Join(ValidFormats, ", "))
}

// ReadFile reads and decodes path, inferring the format from its
// extension unless format is set.
func ReadFile(path string, format Format) (Document, error) {
	if format == "" {
		f, err := FormatForPath(path)
		if err != nil {
			return Document{}, err
		}
		format = f
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// Decode parses a document in the given format.
func Decode(r io.Reader, format Format) (Document, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatCoNLLU:
		return decodeCoNLLU(r)
	}
	return Document{}, fmt.Errorf("unknown input format %q", format)
}

// jsonToken is the spaCy-style token shape. Extra fields such as "idx",
// "sent" or "morph" are ignored.
type jsonToken struct {
	ID    *int            `json:"id"`
	Index *int            `json:"index"`
	Text  string          `json:"text"`
	Lemma string          `json:"lemma"`
	POS   string          `json:"pos"`
	Tag   string          `json:"tag"`
	Dep   string          `json:"dep"`
	Head  json.RawMessage `json:"head"`
}

type jsonDocument struct {
	Title     string `json:"title"`
	Sentences []struct {
		Tokens []jsonToken `json:"tokens"`
	} `json:"sentences"`
	// Legacy shape: one token list per sentence.
	Tokens [][]jsonToken `json:"tokens"`
}

func decodeJSON(r io.Reader) (Document, error) {
	var raw jsonDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("decode json: %w", err)
	}
	if raw.Sentences != nil && raw.Tokens != nil {
		return Document{}, fmt.Errorf("decode json: both \"sentences\" and \"tokens\" present")
	}

	lists := raw.Tokens
	if raw.Sentences != nil {
		lists = make([][]jsonToken, len(raw.Sentences))
		for i, s := range raw.Sentences {
			lists[i] = s.Tokens
		}
	}

	doc := Document{Title: raw.Title, Sentences: make([][]Token, len(lists))}
	for i, list := range lists {
		tokens := make([]Token, len(list))
		for j, jt := range list {
			t := Token{
				ID:    jt.ID,
				Index: jt.Index,
				Text:  jt.Text,
				Lemma: jt.Lemma,
				POS:   jt.POS,
				Tag:   jt.Tag,
				Dep:   jt.Dep,
			}
			tokens[j] = jsonHead(t, jt.Head)
		}
		doc.Sentences[i] = tokens
	}
	return doc, nil
}

// jsonHead sets the head of t from its raw JSON value. A missing or
// non-integer head marks the token instead of failing the document.
func jsonHead(t Token, raw json.RawMessage) Token {
	if len(raw) == 0 || string(raw) == "null" {
		return faulty(t, ErrCodeMalformedHead, "missing head")
	}
	var head int
	if err := json.Unmarshal(raw, &head); err != nil {
		return faulty(t, ErrCodeMalformedHead, "head %s is not an integer", raw)
	}
	t.Head = head
	return t
}

// decodeCoNLLU parses CoNLL-U. Multiword-token ranges ("1-2") and empty
// nodes ("1.1") are skipped; HEAD 0 marks the root. A token line that
// cannot be read, or whose HEAD is its own ID, is kept as a marked token
// so only its sentence is rejected.
func decodeCoNLLU(r io.Reader) (Document, error) {
	var (
		doc     Document
		current []Token
		lineNo  int
	)
	flush := func() {
		if current != nil {
			doc.Sentences = append(doc.Sentences, current)
			current = nil
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			if v, ok := commentValue(line, "newdoc id"); ok && doc.Title == "" {
				doc.Title = v
			}
			if v, ok := commentValue(line, "title"); ok {
				doc.Title = v
			}
			continue
		}

		var cols []string
		if strings.Contains(line, "\t") {
			cols = strings.Split(line, "\t")
		} else {
			cols = strings.Fields(line)
		}
		if len(cols) < 8 {
			text := ""
			if len(cols) > 1 {
				text = cols[1]
			}
			current = append(current, faulty(Token{Text: text}, ErrCodeMalformedToken,
				"line %d: want 10 columns, got %d", lineNo, len(cols)))
			continue
		}
		if strings.ContainsAny(cols[0], "-.") {
			continue
		}
		current = append(current, conlluToken(cols, lineNo))
	}
	if err := sc.Err(); err != nil {
		return Document{}, fmt.Errorf("conllu: %w", err)
	}
	flush()
	return doc, nil
}

func conlluToken(cols []string, lineNo int) Token {
	t := Token{
		Text:  cols[1],
		Lemma: cols[2],
		POS:   blank(cols[3]),
		Tag:   blank(cols[4]),
		Dep:   subtype(cols[7]),
	}
	id, err := strconv.Atoi(cols[0])
	if err != nil {
		return faulty(t, ErrCodeMalformedToken, "line %d: bad id %q", lineNo, cols[0])
	}
	t.ID = &id
	head, err := strconv.Atoi(cols[6])
	switch {
	case err != nil:
		return faulty(t, ErrCodeMalformedHead, "line %d: bad head %q", lineNo, cols[6])
	case head == id:
		return faulty(t, ErrCodeHeadCycle, "line %d: HEAD %d is the token's own ID; the root has HEAD 0", lineNo, head)
	case head == 0:
		head = id
	}
	t.Head = head
	return t
}

func commentValue(line, key string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if !strings.HasPrefix(rest, key) {
		return "", false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, key))
	if !strings.HasPrefix(rest, "=") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(rest, "=")), true
}

func blank(s string) string {
	if s == "_" {
		return ""
	}
	return s
}

// subtype maps UD relation subtypes onto the labels the rules use:
// "aux:pass" becomes "auxpass", "compound:prt" becomes "prt" and
// "nmod:poss" becomes "poss". Other subtypes are dropped ("acl:relcl"
// becomes "acl").
func subtype(dep string) string {
	switch strings.ToLower(dep) {
	case "aux:pass":
		return "auxpass"
	case "compound:prt":
		return "prt"
	case "nmod:poss":
		return "poss"
	case "obl:npmod", "obl:tmod":
		return "npadvmod"
	}
	if i := strings.IndexByte(dep, ':'); i > 0 {
		return dep[:i]
	}
	return dep
}
