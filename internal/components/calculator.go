package components

import (
	"bytes"
	"context"
	"html/template"

	"git.home.luguber.info/inful/coursesite/internal/components/discriminator"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
)

var calculatorTmpl = template.Must(template.New("AnchorDiscriminatorCalculator").Parse(`<div class="discriminator-calculator animate-slide-up" data-component="AnchorDiscriminatorCalculator">
<form method="get" action="/api/discriminator" data-discriminator-form>
<p class="calc-title">{{.Labels.Title}}</p>
<label>{{.Labels.Kind}} <select name="kind">{{range .Kinds}}<option value="{{.}}"{{if eq . $.Kind}} selected{{end}}>{{.}}</option>{{end}}</select></label>
<label>{{.Labels.Name}} <input type="text" name="name" value="{{.Name}}" pattern="[A-Za-z_][A-Za-z0-9_]*" required></label>
<input type="hidden" name="format" value="html">
<button type="submit">{{.Labels.Compute}}</button>
</form>
<output class="calc-result" data-discriminator-result>{{if .Result}}<span class="calc-result-label">{{.Labels.Result}}</span> <code class="calc-preimage">{{.Preimage}}</code>
<pre class="calc-hex"><code>{{.Result.Hex}}</code></pre>
<pre class="calc-rust"><code>{{.Result.Rust}}</code></pre>{{end}}</output>
</div>`))

type calculatorLabels struct {
	Title, Kind, Name, Compute, Result string
}

// AnchorDiscriminatorCalculator renders an interactive discriminator form.
// With kind and name props the result is computed at render time.
type AnchorDiscriminatorCalculator struct{}

// NewAnchorDiscriminatorCalculator returns the calculator component.
func NewAnchorDiscriminatorCalculator() *AnchorDiscriminatorCalculator {
	return &AnchorDiscriminatorCalculator{}
}

func (*AnchorDiscriminatorCalculator) Name() string       { return "AnchorDiscriminatorCalculator" }
func (*AnchorDiscriminatorCalculator) Required() []string { return nil }
func (*AnchorDiscriminatorCalculator) RawChildren() bool  { return true }

func (*AnchorDiscriminatorCalculator) Render(_ context.Context, in mdx.Invocation) (template.HTML, error) {
	rc := in.Context
	data := struct {
		Labels   calculatorLabels
		Kinds    []discriminator.Kind
		Kind     discriminator.Kind
		Name     string
		Preimage string
		Result   *discriminator.Discriminator
	}{
		Labels: calculatorLabels{
			Title:   rc.Translate("calc.title"),
			Kind:    rc.Translate("calc.kind"),
			Name:    rc.Translate("calc.name"),
			Compute: rc.Translate("calc.compute"),
			Result:  rc.Translate("calc.result"),
		},
		Kinds: discriminator.Kinds,
		Kind:  discriminator.Instruction,
		Name:  in.Props.String("name", ""),
	}

	if in.Props.Has("kind") {
		k, err := discriminator.ParseKind(in.Props.String("kind", ""))
		if err != nil {
			return "", err
		}
		data.Kind = k
	}
	if data.Name != "" {
		d, err := discriminator.Compute(data.Kind, data.Name)
		if err != nil {
			return "", err
		}
		data.Result = &d
		data.Preimage, _ = discriminator.Preimage(data.Kind, data.Name)
	}

	var buf bytes.Buffer
	if err := calculatorTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // template-escaped
}

// ResultFragment renders just the result block, for the HTML variant of the API.
func ResultFragment(kind discriminator.Kind, name string, d discriminator.Discriminator) template.HTML {
	pre, _ := discriminator.Preimage(kind, name)
	var buf bytes.Buffer
	_ = resultTmpl.Execute(&buf, struct {
		Preimage string
		Result   discriminator.Discriminator
	}{pre, d})
	return template.HTML(buf.String()) //nolint:gosec // template-escaped
}

var resultTmpl = template.Must(template.New("result").Parse(
	`<code class="calc-preimage">{{.Preimage}}</code>` +
		`<pre class="calc-hex"><code>{{.Result.Hex}}</code></pre>` +
		`<pre class="calc-rust"><code>{{.Result.Rust}}</code></pre>`))
