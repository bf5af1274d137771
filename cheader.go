package takt

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
)

var cheaderTmpl = template.Must(template.New("cheader").Funcs(sprig.TxtFuncMap()).Parse(
	`{{- $prefix := .Name | snakecase | upper -}}
#ifndef {{ $prefix }}_H
#define {{ $prefix }}_H

#define {{ $prefix }}_SAMPLE_RATE {{ .SampleRate }}
#define {{ $prefix }}_CHANNELS {{ .Channels }}
#define {{ $prefix }}_FRAMES {{ .Frames }}

static const short {{ .Name | snakecase }}_data[{{ .Frames }} * {{ .Channels }}] = {
{{- range .Lines }}
    {{ . }}
{{- end }}
};

#endif
`))

// CHeader renders the buffer as a C header file declaring the audio as
// a 16-bit PCM sample array, for embedding exported audio directly in C
// programs. The name is used for the include guard and the array name,
// mangled to a valid identifier.
func (buffer AudioBuffer) CHeader(name string) ([]byte, error) {
	name = identifier(name)
	samples := make([]int16, 0, len(buffer)*2)
	for _, v := range buffer {
		samples = append(samples,
			int16(clamp(int(v[0]*math.MaxInt16), math.MinInt16, math.MaxInt16)),
			int16(clamp(int(v[1]*math.MaxInt16), math.MinInt16, math.MaxInt16)))
	}
	const perLine = 16
	var lines []string
	for i := 0; i < len(samples); i += perLine {
		var sb strings.Builder
		for _, s := range samples[i:min(i+perLine, len(samples))] {
			fmt.Fprintf(&sb, "%d,", s)
		}
		lines = append(lines, sb.String())
	}
	data := struct {
		Name       string
		SampleRate int
		Channels   int
		Frames     int
		Lines      []string
	}{name, SampleRate, 2, len(buffer), lines}
	buf := new(bytes.Buffer)
	if err := cheaderTmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("CHeader failed: %v", err)
	}
	return buf.Bytes(), nil
}

// identifier mangles a name into something usable as a C identifier,
// replacing anything but letters and digits with underscores.
func identifier(name string) string {
	mangled := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
	mangled = strings.Trim(mangled, "_")
	if mangled == "" {
		return "takt_export"
	}
	if mangled[0] >= '0' && mangled[0] <= '9' {
		mangled = "_" + mangled
	}
	return mangled
}
