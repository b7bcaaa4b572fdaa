package transport

import "strings"

// JSONFlag is the parameter that asks the server for a JSON response.
const JSONFlag = "json"

// Param is one name/value pair.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered parameter list. Order is preserved on the wire.
type Params []Param

// Add appends a pair.
func (p *Params) Add(name, value string) {
	*p = append(*p, Param{Name: name, Value: value})
}

// WithJSONFlag returns a copy of p with json=1 appended.
func (p Params) WithJSONFlag() Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	out.Add(JSONFlag, "1")
	return out
}

// Encode serializes p as application/x-www-form-urlencoded with spaces
// written as %20.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(kv.Name))
		b.WriteByte('=')
		b.WriteString(escape(kv.Value))
	}
	return b.String()
}

// AppendQuery adds p to the query string of rawURL, after any parameters
// already present.
func AppendQuery(rawURL string, p Params) string {
	if len(p) == 0 {
		return rawURL
	}
	frag := ""
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL, frag = rawURL[:i], rawURL[i:]
	}
	sep := "?"
	switch {
	case strings.HasSuffix(rawURL, "?"), strings.HasSuffix(rawURL, "&"):
		sep = ""
	case strings.Contains(rawURL, "?"):
		sep = "&"
	}
	return rawURL + sep + p.Encode() + frag
}

const upperhex = "0123456789ABCDEF"

// escape percent-encodes every byte of s outside the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), the set browsers leave intact in form
// components.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
