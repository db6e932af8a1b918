package enrich

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Default gazetteer: places and institutions frequently named in Colombian
// news coverage. Matching is case- and accent-insensitive; the canonical
// spelling is what gets attached to articles.
var colombianGazetteer = []string{
	// Cities
	"Bogotá", "Medellín", "Cali", "Barranquilla", "Cartagena", "Cúcuta",
	"Bucaramanga", "Pereira", "Santa Marta", "Ibagué", "Manizales",
	"Villavicencio", "Pasto", "Montería", "Neiva", "Armenia", "Popayán",
	"Tunja", "Riohacha", "Quibdó", "Leticia", "Mocoa",
	// Departments
	"Antioquia", "Cundinamarca", "Valle del Cauca", "Atlántico", "Bolívar",
	"Santander", "Norte de Santander", "Boyacá", "Nariño", "Córdoba",
	"Tolima", "Huila", "Cesar", "La Guajira", "Magdalena", "Meta",
	"Caquetá", "Casanare", "Chocó", "Putumayo", "Arauca", "Guaviare",
	"Vichada", "Vaupés", "Amazonas", "Risaralda", "Quindío", "Caldas",
	"Sucre", "San Andrés",
	// Institutions and organizations
	"Ecopetrol", "Fiscalía", "Procuraduría", "Contraloría", "Registraduría",
	"Corte Constitucional", "Corte Suprema", "Consejo de Estado",
	"Banco de la República", "Policía Nacional", "Ejército Nacional",
	"TransMilenio", "Avianca", "DANE", "DIAN", "ICBF", "Invima",
	"Casa de Nariño", "Congreso de la República", "ELN", "FARC",
	"Clan del Golfo",
}

// EntityRecognizer finds Colombian entities in article text by gazetteer
// lookup over accent-folded content.
type EntityRecognizer struct {
	// folded entity -> canonical spelling
	entities map[string]string
	// folded names ordered longest-first so "Valle del Cauca" wins over any
	// shorter overlapping entry
	ordered []string
}

func NewEntityRecognizer() *EntityRecognizer {
	return NewEntityRecognizerWithGazetteer(colombianGazetteer)
}

func NewEntityRecognizerWithGazetteer(gazetteer []string) *EntityRecognizer {
	r := &EntityRecognizer{
		entities: make(map[string]string, len(gazetteer)),
	}

	for _, name := range gazetteer {
		folded := foldText(name)
		if folded == "" {
			continue
		}
		r.entities[folded] = name
		r.ordered = append(r.ordered, folded)
	}

	// Longest-first so multi-word entities are matched before their parts
	for i := 0; i < len(r.ordered); i++ {
		for j := i + 1; j < len(r.ordered); j++ {
			if len(r.ordered[j]) > len(r.ordered[i]) {
				r.ordered[i], r.ordered[j] = r.ordered[j], r.ordered[i]
			}
		}
	}

	return r
}

// Run returns the canonical names of all gazetteer entities present in the
// content, each at most once, in gazetteer match order.
func (r *EntityRecognizer) Run(content string) []string {
	folded := " " + foldText(content) + " "

	var found []string
	for _, key := range r.ordered {
		if containsWord(folded, key) {
			found = append(found, r.entities[key])
			// Blank out matches so "Valle del Cauca" consumes its words
			// before "Cauca" alone is considered
			folded = strings.ReplaceAll(folded, " "+key+" ", " ")
		}
	}
	return found
}

// containsWord checks for the key at word boundaries. The haystack is
// expected to be folded and space-padded.
func containsWord(haystack, key string) bool {
	return strings.Contains(haystack, " "+key+" ")
}

// foldText lowercases, strips diacritics, and collapses non-letter runs to
// single spaces, so "CÚCUTA," matches "Cúcuta".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
