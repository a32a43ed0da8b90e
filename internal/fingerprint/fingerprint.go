package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net/url"
	"strconv"
	"strings"

	"imovelsync/internal/model"
	"imovelsync/internal/normalizer"
)

// priceBucket agrupa preços em faixas de R$ 1000 para o fingerprint fuzzy,
// de modo que pequenas variações entre portais caiam na mesma faixa.
const priceBucket = 1000

// Compute deriva as duas chaves de identidade de um Listing canônico.
//
// A chave exata decide "é a mesma página re-raspada": a própria URL
// normalizada quando existe, senão um hash do conteúdo identificador,
// idêntico a cada execução para manter a re-ingestão idempotente.
//
// A chave fuzzy decide "é o mesmo imóvel visto por outra fonte": cidade e
// bairro normalizados, preço na faixa de mil, área arredondada e quartos.
func Compute(l model.Listing) (exact, fuzzy string) {
	if l.SourceURL != "" {
		exact = NormalizeURL(l.SourceURL)
	} else {
		exact = hashParts(
			normalizer.Fold(l.Source),
			normalizer.Fold(l.Address),
			fmtFloat(l.Price),
			fmtFloat(l.Area),
			fmtInt(l.Rooms),
		)
	}

	fuzzy = hashParts(
		normalizer.Fold(l.City),
		normalizer.Fold(l.Neighborhood),
		fmtBucket(l.Price),
		fmtRounded(l.Area),
		fmtInt(l.Rooms),
	)
	return exact, fuzzy
}

// Stamp preenche os campos derivados do próprio Listing.
func Stamp(l *model.Listing) {
	l.FingerprintExact, l.FingerprintFuzzy = Compute(*l)
}

// NormalizeURL canoniza a URL do anúncio: esquema e host em minúsculas,
// sem fragmento, sem parâmetros de rastreamento e sem barra final.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(strings.TrimSpace(raw)), "/")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") || strings.EqualFold(key, "gclid") || strings.EqualFold(key, "fbclid") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

func hashParts(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Campos ausentes entram no hash como "null" para que a chave continue
// estável quando a extração melhora ou piora entre execuções.
func fmtFloat(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtInt(v *int) string {
	if v == nil {
		return "null"
	}
	return strconv.Itoa(*v)
}

// fmtBucket trunca o preço para a faixa de mil: 1200500 e 1200000 caem
// ambos em "1200000".
func fmtBucket(v *float64) string {
	if v == nil {
		return "null"
	}
	b := int64(math.Floor(*v/priceBucket)) * priceBucket
	return strconv.FormatInt(b, 10)
}

func fmtRounded(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatInt(int64(math.Round(*v)), 10)
}
