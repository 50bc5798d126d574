package theme

// Theme is a compiled stylesheet ready to serve.
type Theme struct {
	Tokens Tokens
	CSS    []byte
	Hash   string
}

// Compile validates tokens and renders the stylesheet. extra sheets (such as
// syntax highlighting rules) are appended and covered by the hash.
func Compile(t Tokens, extra ...[]byte) (*Theme, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	css := Stylesheet(t)
	for _, e := range extra {
		css = append(append(css, '\n'), e...)
	}
	return &Theme{Tokens: t, CSS: css, Hash: Fingerprint(css)}, nil
}

// Load reads tokens from path (empty = defaults) and compiles them.
func Load(path string, extra ...[]byte) (*Theme, error) {
	t, err := LoadTokens(path)
	if err != nil {
		return nil, err
	}
	return Compile(t, extra...)
}

// Path returns the fingerprinted stylesheet URL path.
func (t *Theme) Path() string { return "/theme." + t.Hash + ".css" }
