// Package scope holds the deterministic text heuristics of the assistant:
// scope classification, intent detection, city extraction and contact
// parsing. Everything here is pure string matching — no network, no model
// calls — so the behavior is testable and zero-latency.
package scope

import "strings"

// Scope labels how an utterance relates to the institution's domain.
type Scope string

const (
	ScopeOn        Scope = "on"
	ScopeAmbiguous Scope = "ambiguous"
	ScopeOff       Scope = "off"
)

// Vocabulary tables. Order matters: domain terms are checked before
// small-talk before ambiguous, because some ambiguous terms can appear
// incidentally inside on-topic questions.
var (
	domainTerms = []string{
		"senac", "senac rs", "senacrs", "senac.br", "senacrs.com.br",
		"curso", "cursos", "matrícula", "matricula", "inscrição", "inscricao",
		"unidade", "unidades", "ead", "mensalidade", "bolsa", "certificado",
		"grade", "carga", "conecta senac", "aprendiz",
	}

	smallTalkTerms = []string{
		"aprendiz", "conecta senac", "assistente", "ia", "chatbot",
		"sobre você", "quem é você", "como funciona", "privacidade",
		"dados", "projeto",
	}

	ambiguousTerms = []string{
		"carreira", "emprego", "trabalho", "currículo", "estágio",
		"faculdade", "universidade", "enem", "vestibular", "curso online",
		"curso técnico", "tecnologia", "gastronomia", "gestão", "idiomas",
	}
)

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Classify labels an utterance as on/ambiguous/off topic using
// case-insensitive substring matching against the vocabulary tables.
func Classify(text string) Scope {
	t := strings.ToLower(text)
	if containsAny(t, domainTerms) {
		return ScopeOn
	}
	if containsAny(t, smallTalkTerms) {
		return ScopeOn
	}
	if containsAny(t, ambiguousTerms) {
		return ScopeAmbiguous
	}
	return ScopeOff
}
