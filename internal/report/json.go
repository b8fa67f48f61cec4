package report

import (
	"encoding/json"
	"io"
)

// jsonWriter renders the document as indented JSON.
type jsonWriter struct{}

func (jsonWriter) Write(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
