package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"imovelsync/internal/model"
)

// ErrMissingIdentity indica um registro sem nenhuma identidade utilizável:
// nem url_anuncio nem o par endereco+preco puderam ser derivados.
var ErrMissingIdentity = errors.New("registro sem identidade (url_anuncio ou endereco+preco)")

var (
	// numberRe captura o primeiro trecho numérico, com separadores pt-BR ou en-US
	numberRe = regexp.MustCompile(`\d[\d.,]*`)
	// intRe captura o primeiro inteiro isolado (ex: "3 quartos")
	intRe = regexp.MustCompile(`\d+`)
)

// Apelidos aceitos para cada campo canônico. Os extratores variam entre
// chaves em português (DAG original) e em inglês, com ou sem acento.
var (
	urlKeys     = []string{"url_anuncio", "source_url", "sourceUrl", "url", "link"}
	titleKeys   = []string{"titulo", "título", "title"}
	addressKeys = []string{"endereco", "endereço", "address"}
	bairroKeys  = []string{"bairro", "neighborhood"}
	cityKeys    = []string{"cidade", "city"}
	priceKeys   = []string{"preco", "preço", "price"}
	areaKeys    = []string{"area", "área"}
	roomsKeys   = []string{"quartos", "rooms", "bedrooms"}
	sourceKeys  = []string{"fonte", "source", "platform"}
	whenKeys    = []string{"coletado_em", "collected_at", "scraped_at"}
)

// Normalizer converte RawRecords no Listing canônico. Não tem estado além
// do relógio, que fica injetável para os testes.
type Normalizer struct {
	now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize mapeia um registro bruto para o Listing canônico. Campos
// numéricos ilegíveis viram nil em vez de derrubar o registro; o único
// erro possível é ErrMissingIdentity.
func (n *Normalizer) Normalize(raw model.RawRecord) (model.Listing, error) {
	l := model.Listing{
		SourceURL:    CleanText(asString(find(raw, urlKeys))),
		Title:        CleanText(asString(find(raw, titleKeys))),
		Address:      CleanText(asString(find(raw, addressKeys))),
		Neighborhood: CleanText(asString(find(raw, bairroKeys))),
		City:         CleanText(asString(find(raw, cityKeys))),
		Price:        asFloat(find(raw, priceKeys)),
		Area:         asFloat(find(raw, areaKeys)),
		Rooms:        asRooms(find(raw, roomsKeys)),
		Source:       CleanText(asString(find(raw, sourceKeys))),
	}

	l.CollectedAt = asTime(find(raw, whenKeys))
	if l.CollectedAt.IsZero() {
		l.CollectedAt = n.now()
	}

	if l.SourceURL == "" && (l.Address == "" || l.Price == nil) {
		return model.Listing{}, fmt.Errorf("normalize %q: %w", l.Title, ErrMissingIdentity)
	}
	return l, nil
}

// find procura o primeiro apelido presente no registro, comparando as
// chaves sem caixa, acento ou separadores.
func find(raw model.RawRecord, aliases []string) any {
	for _, a := range aliases {
		na := foldKey(a)
		for key, val := range raw {
			if foldKey(key) == na {
				return val
			}
		}
	}
	return nil
}

func foldKey(k string) string {
	k = Fold(k)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return r
	}, k)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// asFloat interpreta preços e áreas tolerando "R$ 1.200.000", "80 m²",
// vírgula decimal e ponto de milhar. Retorna nil quando não há número.
func asFloat(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return model.FloatPtr(t)
	case int:
		return model.FloatPtr(float64(t))
	case int64:
		return model.FloatPtr(float64(t))
	case string:
		return parseNumber(t)
	default:
		return nil
	}
}

func parseNumber(raw string) *float64 {
	s := numberRe.FindString(raw)
	if s == "" {
		return nil
	}
	s = strings.Trim(s, ".,")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// formato pt-BR: 1.200.000,50
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// formato en-US: 1,200,000.50
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// só vírgula: decimal quando sobram até 2 dígitos ("80,5"),
		// senão milhar ("1,200,000")
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		// só ponto: "1.200" e "1.200.000" são milhar em pt-BR; "80.5" é decimal
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func asRooms(v any) *int {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		if t < 0 {
			return nil
		}
		return model.IntPtr(t)
	case int64:
		if t < 0 {
			return nil
		}
		return model.IntPtr(int(t))
	case float64:
		if t < 0 {
			return nil
		}
		return model.IntPtr(int(t))
	case string:
		m := intRe.FindString(t)
		if m == "" {
			return nil
		}
		q, err := strconv.Atoi(m)
		if err != nil {
			return nil
		}
		return model.IntPtr(q)
	default:
		return nil
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// CleanText apara e colapsa espaços, mantendo a forma de exibição.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold produz a forma de comparação de um texto: minúsculas, sem acento,
// sem pontuação e com espaços colapsados. É a base dos fingerprints.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
