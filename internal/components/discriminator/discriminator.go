// Package discriminator computes Anchor 8-byte discriminators for
// instructions, accounts and events.
package discriminator

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Kind selects the hashing namespace.
type Kind string

const (
	Instruction Kind = "instruction"
	Account     Kind = "account"
	Event       Kind = "event"
)

// Kinds lists the supported kinds in display order.
var Kinds = []Kind{Instruction, Account, Event}

// Size is the discriminator length in bytes.
const Size = 8

// Discriminator is the leading bytes of sha256("<namespace>:<name>").
type Discriminator [Size]byte

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseKind accepts a kind name, case-insensitively. "ix" and "global" are
// aliases for instruction.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instruction", "ix", "global":
		return Instruction, nil
	case "account":
		return Account, nil
	case "event":
		return Event, nil
	}
	return "", derrors.ValidationError("unknown discriminator kind").WithContext("kind", s).Build()
}

// Preimage returns the string that is hashed for kind and name.
// Instruction names are converted to snake_case; account and event names are used as written.
func Preimage(kind Kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", derrors.ValidationError("name is required").WithContext("kind", string(kind)).Build()
	}
	if !validName.MatchString(name) {
		return "", derrors.ValidationError("name must be a Rust identifier").WithContext("name", name).Build()
	}
	switch kind {
	case Instruction:
		return "global:" + SnakeCase(name), nil
	case Account:
		return "account:" + name, nil
	case Event:
		return "event:" + name, nil
	}
	return "", derrors.ValidationError("unknown discriminator kind").WithContext("kind", string(kind)).Build()
}

// Compute returns the discriminator for kind and name.
func Compute(kind Kind, name string) (Discriminator, error) {
	pre, err := Preimage(kind, name)
	if err != nil {
		return Discriminator{}, err
	}
	sum := sha256.Sum256([]byte(pre))
	var d Discriminator
	copy(d[:], sum[:Size])
	return d, nil
}

// Hex returns the lowercase hex encoding.
func (d Discriminator) Hex() string { return hex.EncodeToString(d[:]) }

// Rust returns a byte array literal: [175, 175, 109, ...].
func (d Discriminator) Rust() string { return "[" + d.join(", ") + "]" }

// Decimal returns the bytes as a comma separated list without brackets.
func (d Discriminator) Decimal() string { return d.join(",") }

func (d Discriminator) String() string { return d.Hex() }

func (d Discriminator) join(sep string) string {
	parts := make([]string, Size)
	for i, b := range d {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, sep)
}

// Format renders d as "hex", "rust" or "bytes".
func Format(d Discriminator, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "hex":
		return d.Hex(), nil
	case "rust":
		return d.Rust(), nil
	case "bytes", "decimal":
		return d.Decimal(), nil
	}
	return "", derrors.ValidationError("unknown format").WithContext("format", format).Build()
}

// SnakeCase converts an identifier the way Anchor names instruction
// handlers: initializeCounter and InitializeCounter both become initialize_counter.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
