// Package category infers a product category from its printed name or from its
// NCM fiscal classification code. Both lookups are pure functions over static
// reference tables.
package category

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is one of the fixed taxonomy names used by the inventory layer
type Category string

const (
	Cleaning  Category = "Limpeza"
	Hygiene   Category = "Higiene"
	Beverages Category = "Bebidas"
	Food      Category = "Alimentos"
	Other     Category = "Outros"
)

// checkOrder is the priority in which categories are tested; the first keyword
// hit wins, so more specific categories come before Alimentos.
var checkOrder = []Category{Cleaning, Hygiene, Beverages, Food}

// Keywords per category, in match priority order. Many entries are the
// abbreviated forms thermal printers use ("det ", "sab niv", "cr lte").
var categoryKeywords = map[Category][]string{
	Cleaning: {
		"detergente", "det ", "det.", "sabão em pó", "sabao em po",
		"água sanitária", "agua sanitaria", "alvejante", "desinfetante",
		"multiuso", "limpa-vidros", "limpa vidros", "limp ", "limpa ",
		"álcool", "alcool", "alc ", "amaciante", "amac ", "esponja",
		"palha de aço", "palha de aco", "saco de lixo", "saco l ",
		"vassoura", "rodo", "balde", "sabão líquido", "sabao liquido",
		"cloro", "limpador", "desengordurante", "sabão em barra",
		"sabao em barra",
	},
	Hygiene: {
		"sabonete", "sab niv", "sab l ", "shampoo", "condicionador",
		"creme dental", "cr dent", "pasta de dente", "escova de dente",
		"escova", "fio dental", "enxaguante", "papel higiênico", "pap hig",
		"papel higienico", "pap toa", "lenço", "lenco", "desodorante",
		"deso ", "creme de barbear", "lâmina", "lamina", "absorvente",
		"fralda", "hidratante", "protetor solar", "cotonete", "algodão",
		"algodao",
	},
	Beverages: {
		"refrigerante", "cerveja", "cerv ", "suco", "néctar", "nectar",
		"água mineral", "agua mineral", "agu min", "água de coco",
		"agua de coco", "leite", "café", "cafe", "caf ", "chá", "cha",
		"vinho", "energético", "energetico", "bebida", "isotônico",
		"isotonico", "soda", "limonada",
	},
	Food: {
		"arroz", "feijão", "feijao", "feija", "óleo", "oleo", "açúcar",
		"acucar", "sal", "macarrão", "macarrao", "massa", "mas ", "massa ",
		"farinha", "farinh", "molho de tomate", "molho", "mol t ", "mol ",
		"leite condensado", "creme de leite", "cr lte", "carne", "frango",
		"peixe", "file ", "filé", "file", "ovo", "ovos", "pão", "pao ",
		"pao", "manteiga", "manteig", "margarina", "queijo", "qjo ",
		"presunto", "mortadela", "salsicha", "sals ", "iogurte", "iog ",
		"cereal", "biscoito", "bisc ", "bolacha", "chocolate",
		"achocolatado", "azeite", "azeit", "vinagre", "vinag", "maionese",
		"ketchup", "mostarda", "tempero", "temp ", "caldo", "sopa",
		"lasanha", "pizza", "hambúrguer", "hamburguer", "nugget", "batata",
		"mandioca", "banana", "maçã", "maca", "laranja", "tomate", "tomat",
		"cebola", "cebolinh", "alho", "alface", "brocol", "brócolis",
		"brocolis", "coentro", "coentr", "salsa", "manjericão", "manjeric",
		"oregano", "oregan", "cominho", "cominh", "canela", "açafrão",
		"acafr", "ext tom", "granola", "goma", "lentilha", "lentilh",
		"grão de bico", "grao bico", "grao ", "lte ", "verduras",
		"legumes", "abacaxi",
	},
}

// normalizedKeywords mirrors categoryKeywords with Normalize applied once at
// process start, so FromName does no per-call keyword normalization.
var normalizedKeywords = func() map[Category][]string {
	out := make(map[Category][]string, len(categoryKeywords))
	for cat, keywords := range categoryKeywords {
		normalized := make([]string, 0, len(keywords))
		for _, keyword := range keywords {
			if n := Normalize(keyword); n != "" {
				normalized = append(normalized, n)
			}
		}
		out[cat] = normalized
	}
	return out
}()

// ncmChapterCategories maps the leading two digits (the NCM "chapter") of a
// fiscal classification code to a category. Chapters 1-21 and 23 cover the
// animal/vegetable kingdoms and food preparations.
var ncmChapterCategories = func() map[int]Category {
	m := map[int]Category{
		22: Beverages,
		33: Hygiene,
		34: Cleaning,
	}
	for chapter := 1; chapter <= 21; chapter++ {
		m[chapter] = Food
	}
	m[23] = Food
	return m
}()

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a string for keyword comparison: trim, lowercase,
// collapse whitespace and strip diacritics.
func Normalize(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	lowered = strings.Join(strings.Fields(lowered), " ")
	stripped, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

// FromName infers the category from a free-text product name. Categories are
// tested in fixed priority order and, within a category, keywords in list
// order; the first keyword found as a substring wins. Returns Other when
// nothing matches.
func FromName(name string) Category {
	normalized := Normalize(name)
	if normalized == "" {
		return Other
	}

	for _, cat := range checkOrder {
		for _, keyword := range normalizedKeywords[cat] {
			if strings.Contains(normalized, keyword) {
				return cat
			}
		}
	}

	return Other
}

// FromNCM infers the category from an NCM fiscal classification code (2 to 8
// digits). The second return value is false when the chapter is malformed or
// unmapped, in which case callers should fall back to FromName.
func FromNCM(ncm string) (Category, bool) {
	trimmed := strings.TrimSpace(ncm)
	if len(trimmed) < 2 {
		return "", false
	}

	chapter, err := strconv.Atoi(trimmed[:2])
	if err != nil {
		return "", false
	}

	cat, ok := ncmChapterCategories[chapter]
	return cat, ok
}
