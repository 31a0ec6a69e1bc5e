package helper

import (
	"strings"

	"github.com/gofrs/uuid"
)

func GetUuidV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// UniqueName arma un nombre de base de datos o colección irrepetible.
func UniqueName(prefix string) string {
	id := strings.ReplaceAll(GetUuidV7(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
