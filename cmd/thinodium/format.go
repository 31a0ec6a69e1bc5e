package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Nemutagk/thinodium/models"
)

// formatDocuments imprime siempre un arreglo JSON con sangría.
func formatDocuments(docs []models.Document) string {
	items := make([]any, 0, len(docs))
	for _, d := range docs {
		items = append(items, d)
	}
	return formatValue(items)
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if isSimple(v) {
		return fmt.Sprint(v)
	}
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(j)
}

func isSimple(v any) bool {
	switch v.(type) {
	case string, fmt.Stringer,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		bool,
		time.Time,
		json.Number:
		return true
	}
	return false
}
