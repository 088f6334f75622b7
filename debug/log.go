package debug

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Out is where diagnostics are written.
var Out io.Writer = os.Stderr

// Logf writes a formatted diagnostic. Maps and slices are rendered as
// indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(a, "", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = strings.ReplaceAll(string(d), "\n", "\n   |")
		}
	}
	fmt.Fprintf(Out, msg, args...)
}

// LogAny writes v as JSON, or with %v if it cannot be encoded.
func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(Out, "%v\n", v)
		return
	}
	Out.Write(append(d, '\n'))
}
