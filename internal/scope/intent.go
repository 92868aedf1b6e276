package scope

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	explicitSearchTokens = []string{
		"pesquise", "pesquisa", "procurar", "procure", "buscar", "busque",
	}

	addressTokens = []string{
		"onde fica", "endereço", "endereco", "unidade", "unidades",
		"localização", "localizacao", "perto de mim",
	}

	infoTokens = []string{
		"horário", "horario", "telefone", "preço", "valor", "mensalidade",
		"data", "quando", "link", "site", "matrícula", "inscrição",
		"inscricao", "grade curricular", "carga horária", "carga horaria",
	}

	enrollmentTriggers = []string{
		"quero me inscrever", "proximo passo", "como me inscrevo",
		"gostei e quero mais", "quero começar",
	}

	// Co-occurrence vocabulary for the search gate: an info/address token
	// alone is not enough to justify a paid search call.
	searchDomainTokens = []string{
		"curso", "unidade", "matrícula", "inscrição", "inscricao", "ead",
	}

	// Tokens that mean a reply given while awaiting a city is a new topic,
	// not a bare city name.
	topicTokens = []string{
		"senac", "curso", "inscri", "pagamento", "unidade", "matrícula", "ead",
	}
)

// WantsExplicitSearch reports whether the utterance explicitly asks for a
// web search.
func WantsExplicitSearch(text string) bool {
	return containsAny(strings.ToLower(text), explicitSearchTokens)
}

// WantsAddress reports whether the utterance asks for a unit address or
// location. The search-decision logic adds a domain co-occurrence check on
// top of this.
func WantsAddress(text string) bool {
	return containsAny(strings.ToLower(text), addressTokens)
}

// WantsEnrollment reports whether the utterance is a ready-to-commit
// phrase that should start contact capture.
func WantsEnrollment(text string) bool {
	return containsAny(strings.ToLower(text), enrollmentTriggers)
}

// ShouldSearchWeb gates retrieval: true on an explicit search token, or on
// an address/info token combined with the institution name or course /
// enrollment vocabulary. The conjunction keeps unrelated info-style
// questions from burning rate-limited search calls.
func ShouldSearchWeb(text string) bool {
	t := strings.ToLower(text)
	if containsAny(t, explicitSearchTokens) {
		return true
	}
	if containsAny(t, addressTokens) || containsAny(t, infoTokens) {
		if strings.Contains(t, "senac") || containsAny(t, searchDomainTokens) {
			return true
		}
	}
	return false
}

// LooksLikeNewTopic reports whether a reply given while awaiting a city
// carries domain vocabulary, meaning it should fall through to the scope
// and search branches instead of being read as a city name.
func LooksLikeNewTopic(text string) bool {
	return containsAny(strings.ToLower(text), topicTokens)
}

var (
	cityPattern  = regexp.MustCompile(`(?i)senac\s+([a-zçãõáéíóúâêôà\- ]+)`)
	emailPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
)

// titleCase builds a fresh caser per call: cases.Caser carries internal
// state and is not safe for concurrent use across sessions.
func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(s)
}

// ExtractCity pulls a city token from text following the institution name,
// title-cased. Returns "" when no city is present inline.
func ExtractCity(text string) string {
	m := cityPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}
	return titleCase(strings.TrimSpace(m[1]))
}

// TitleCase normalizes a bare city reply with Brazilian-Portuguese title
// casing.
func TitleCase(s string) string {
	return titleCase(s)
}

// DefaultLeadName is used when the contact reply has no text before the
// email to derive a name from.
const DefaultLeadName = "Interessado"

// ContactReply is the parsed result of a contact-capture reply.
type ContactReply struct {
	Name  string
	Email string
}

// ParseContactReply extracts an email address and a best-effort name from
// a reply given while awaiting contact info. The name is the last
// whitespace-delimited token before the email, title-cased; when nothing
// precedes the email the placeholder name is used. Returns ok=false when
// no email is found.
func ParseContactReply(text string) (ContactReply, bool) {
	loc := emailPattern.FindStringIndex(text)
	if loc == nil {
		return ContactReply{}, false
	}

	email := strings.ToLower(text[loc[0]:loc[1]])

	name := DefaultLeadName
	if before := strings.TrimSpace(text[:loc[0]]); before != "" {
		fields := strings.Fields(strings.Trim(before, ",;:-"))
		if len(fields) > 0 {
			name = titleCase(strings.Trim(fields[len(fields)-1], ",;:-"))
		}
	}

	return ContactReply{Name: name, Email: email}, true
}
