package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Row est une ligne tabulaire renvoyée par le tableur, indexée par les en-têtes de colonnes
type Row map[string]interface{}

// LookupField résout un champ logique parmi une liste d'alias.
// Chaque alias est d'abord cherché tel quel, puis sans tenir compte de la casse ni des espaces.
// Si plusieurs en-têtes se confondent, le premier dans l'ordre trié l'emporte.
func LookupField(row Row, aliases ...string) (interface{}, bool) {
	var keys []string
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && v != nil {
			return v, true
		}
		if keys == nil {
			keys = make([]string, 0, len(row))
			for k := range row {
				keys = append(keys, k)
			}
			sort.Strings(keys)
		}
		want := normalizeHeader(alias)
		for _, k := range keys {
			if v := row[k]; v != nil && normalizeHeader(k) == want {
				return v, true
			}
		}
	}
	return nil, false
}

// LookupString retourne le champ sous forme de texte, ou def si absent ou vide
func LookupString(row Row, def string, aliases ...string) string {
	v, ok := LookupField(row, aliases...)
	if !ok {
		return def
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return def
	}
	return s
}

// LookupFloat retourne le champ sous forme numérique (0 si illisible)
func LookupFloat(row Row, aliases ...string) float64 {
	v, ok := LookupField(row, aliases...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(toString(v)), ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// Les codes numériques du tableur arrivent en float (ex: 999 → "999")
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

var (
	driveFilePath = regexp.MustCompile(`/d/(.+?)(/|$)`)
	driveFileID   = regexp.MustCompile(`[?&]id=([^&]+)`)
)

// NormalizeDriveImage convertit un lien de partage Google Drive en URL d'image directe
func NormalizeDriveImage(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" || !strings.Contains(u, "drive.google.com") {
		return u
	}
	if m := driveFilePath.FindStringSubmatch(u); m != nil && m[1] != "" {
		return "https://lh3.googleusercontent.com/d/" + m[1]
	}
	if m := driveFileID.FindStringSubmatch(u); m != nil && m[1] != "" {
		return "https://lh3.googleusercontent.com/d/" + m[1]
	}
	return u
}
