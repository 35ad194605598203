package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

// writeJSON writes v as one line of JSON, or indented when prettyPrint is
// set. Indented output to a terminal is colored.
func writeJSON(w io.Writer, v any, prettyPrint bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if prettyPrint {
		b = pretty.Pretty(b)
		if isTerminal(w) {
			b = pretty.Color(b, nil)
		}
	} else {
		b = append(b, '\n')
	}
	_, err = w.Write(b)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
