package resolver

import (
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// translit is the Russian table people use for Latin nicknames
// (я → ya, ю → yu, щ → sch). Hard and soft signs are dropped so they do not
// split words.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "",
	'ы': "yi", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Variants returns the lowercased query and, when it contains Cyrillic, its
// Latin transliterations: the nickname table first, then unidecode's
// reading (я → ia) when it differs. The original form always comes first.
func Variants(query string) []string {
	lower := strings.ToLower(query)
	variants := []string{lower}

	if !hasCyrillic(lower) {
		return variants
	}
	if latin, ok := Transliterate(lower); ok {
		variants = appendNew(variants, latin)
	}
	return appendNew(variants, strings.ToLower(strings.TrimSpace(unidecode.Unidecode(lower))))
}

// Transliterate maps Russian letters in s to Latin, lowercased. ok is false
// when something outside the table and ASCII is left over.
func Transliterate(s string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if latin, ok := translit[r]; ok {
			b.WriteString(latin)
			continue
		}
		if r > unicode.MaxASCII {
			return "", false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

func appendNew(variants []string, v string) []string {
	if v == "" || slices.Contains(variants, v) {
		return variants
	}
	return append(variants, v)
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// BestMatch scores every candidate against query and returns the index and
// score of the best one. Earlier candidates win ties. ok is false when there
// are no candidates.
func BestMatch(query string, candidates []string) (index, score int, ok bool) {
	index = -1
	for i, c := range candidates {
		s := TokenSetRatio(query, c)
		if index == -1 || s > score {
			index, score = i, s
		}
	}
	return index, score, index != -1
}

// TokenSetRatio compares two strings as sets of words, 0..100. Word order and
// repeated words do not matter, and a string that is a word subset of the
// other scores 100.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	sect := joinSorted(inter)
	withA := strings.TrimSpace(sect + " " + joinSorted(onlyA))
	withB := strings.TrimSpace(sect + " " + joinSorted(onlyB))

	best := ratio(withA, withB)
	if sect != "" {
		best = max(best, ratio(sect, withA), ratio(sect, withB))
	}
	return best
}

// ratio is the insert/delete similarity of two strings, 0..100:
// 1 - indel/(len(a)+len(b)), which is 2*LCS/(len(a)+len(b)).
func ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(2*lcs(ra, rb)) / float64(total)))
}

// lcs is the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// tokenSet lowercases s, treats every non-alphanumeric rune as a separator
// and returns the distinct words.
func tokenSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func joinSorted(words []string) string {
	sort.Strings(words)
	return strings.Join(words, " ")
}
