package sparql

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

// selectResponse mirrors the SPARQL 1.1 Query Results JSON format.
type selectResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func decodeSelectResults(body io.Reader) ([]domain.BindingRow, error) {
	var decoded selectResponse
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode select response: %w", err)
	}

	rows := make([]domain.BindingRow, 0, len(decoded.Results.Bindings))
	for _, binding := range decoded.Results.Bindings {
		row := make(domain.BindingRow, len(binding))
		for name, value := range binding {
			row[name] = value.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}
