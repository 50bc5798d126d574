package theme

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// keyframes are fixed; they are not token driven.
const keyframes = `@keyframes fade-in{from{opacity:0}to{opacity:1}}
@keyframes slide-up{from{opacity:0;transform:translateY(8px)}to{opacity:1;transform:none}}
@keyframes pulse{0%,100%{opacity:1}50%{opacity:.5}}
.animate-fade-in{animation:fade-in .2s ease-out both}
.animate-slide-up{animation:slide-up .3s ease-out both}
.animate-pulse{animation:pulse 2s cubic-bezier(.4,0,.6,1) infinite}
`

// Stylesheet renders tokens as CSS. Output is deterministic.
func Stylesheet(t Tokens) []byte {
	var b bytes.Buffer

	b.WriteString(":root{")
	writeVars(&b, "color", t.Colors)
	writeVars(&b, "font", t.Fonts)
	writeVars(&b, "radius", t.Radii)
	writeVars(&b, "space", t.Spacing)
	writeVars(&b, "breakpoint", t.Breakpoints)
	b.WriteString("}\n")

	if len(t.Dark) > 0 {
		b.WriteString("[data-theme=dark]{")
		writeVars(&b, "color", t.Dark)
		b.WriteString("}\n@media (prefers-color-scheme: dark){:root:not([data-theme=light]){")
		writeVars(&b, "color", t.Dark)
		b.WriteString("}}\n")
	}

	b.WriteString("html{font-family:var(--font-sans);background:var(--color-background);color:var(--color-foreground)}\n")
	b.WriteString("code,pre{font-family:var(--font-mono)}\n")

	for _, name := range sortedKeys(t.Colors) {
		fmt.Fprintf(&b, ".text-%s{color:var(--color-%s)}\n", name, name)
		fmt.Fprintf(&b, ".bg-%s{background-color:var(--color-%s)}\n", name, name)
		fmt.Fprintf(&b, ".border-%s{border-color:var(--color-%s)}\n", name, name)
	}
	for _, name := range sortedKeys(t.Fonts) {
		fmt.Fprintf(&b, ".font-%s{font-family:var(--font-%s)}\n", name, name)
	}
	for _, name := range sortedKeys(t.Radii) {
		fmt.Fprintf(&b, ".rounded-%s{border-radius:var(--radius-%s)}\n", name, name)
	}

	b.WriteString(".container{width:100%;margin-inline:auto;padding-inline:var(--space-4,1rem)}\n")
	for _, bp := range breakpointsBySize(t.Breakpoints) {
		fmt.Fprintf(&b, "@media (min-width:%s){.container{max-width:%s}}\n", bp.value, bp.value)
	}

	b.WriteString(keyframes)
	return b.Bytes()
}

// Fingerprint returns a short content hash used in the stylesheet URL.
func Fingerprint(css []byte) string {
	sum := sha256.Sum256(css)
	return hex.EncodeToString(sum[:])[:12]
}

func writeVars(b *bytes.Buffer, prefix string, m map[string]string) {
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(b, "--%s-%s:%s;", prefix, name, strings.TrimSpace(m[name]))
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type breakpoint struct {
	name  string
	value string
	px    float64
}

// breakpointsBySize orders breakpoints ascending so min-width queries cascade.
// rem and em are compared at 16px.
func breakpointsBySize(m map[string]string) []breakpoint {
	out := make([]breakpoint, 0, len(m))
	for name, v := range m {
		v = strings.TrimSpace(v)
		var num string
		scale := 1.0
		switch {
		case strings.HasSuffix(v, "px"):
			num = strings.TrimSuffix(v, "px")
		case strings.HasSuffix(v, "rem"):
			num, scale = strings.TrimSuffix(v, "rem"), 16
		case strings.HasSuffix(v, "em"):
			num, scale = strings.TrimSuffix(v, "em"), 16
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}
		out = append(out, breakpoint{name: name, value: v, px: f * scale})
	}
	slices.SortFunc(out, func(a, b breakpoint) int {
		switch {
		case a.px < b.px:
			return -1
		case a.px > b.px:
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	return out
}
