package c

import (
	"strings"
	"text/template"
)

// templateFuncs mirrors the teacher cborgen/core generator's rt()-style
// convention of exposing a handful of small render helpers to templates
// instead of pre-formatting every string in Go (cborgen/core/run.go's
// templateFuncs).
var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"join":  strings.Join,
	"guard": func(project string) string {
		return strings.ToUpper(strings.ReplaceAll(project, "-", "_")) + "_H_"
	},
}
