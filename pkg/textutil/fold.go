package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain descompone (NFD), elimina marcas diacríticas y recompone (NFC).
// Reutilizable: transform.Chain es seguro para uso concurrente vía transform.String.
var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normaliza un texto para búsqueda: minúsculas y sin tildes/diacríticos.
// "Pérez Álvarez" -> "perez alvarez". Si la transformación falla devuelve el
// original en minúsculas (mejor un match parcial que un error en un listado).
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// ContainsFold indica si needle aparece en haystack ignorando mayúsculas y tildes.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
