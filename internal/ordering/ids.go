package ordering

import (
	"strconv"
	"strings"
	"time"
)

const orderIDPrefix = "ORD-"

// BaseOrderID dérive l'identifiant de base de l'instant d'envoi (millisecondes epoch)
func BaseOrderID(t time.Time) string {
	return orderIDPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

// GroupOrderID suffixe l'identifiant de base avec l'index (1..n) du groupe
func GroupOrderID(base string, index int) string {
	return base + "-" + strconv.Itoa(index)
}

// searchKey met un identifiant ou un terme de recherche sous forme comparable
func searchKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "ord-")
}
