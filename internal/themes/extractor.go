package themes

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	// minDocFreq drops terms seen in fewer than this many tweets.
	minDocFreq = 2
	// maxDocRatio drops terms seen in more than this share of tweets.
	maxDocRatio = 0.9
)

// Extractor surfaces the most characteristic terms of a set of tweets using
// TF-IDF over unigrams and bigrams.
type Extractor struct {
	topN int
}

func NewExtractor(topN int) *Extractor {
	if topN <= 0 {
		topN = 5
	}
	return &Extractor{topN: topN}
}

// Extract returns up to topN key themes ranked by mean TF-IDF score across
// the corpus. Fewer than two input texts yields no themes.
func (e *Extractor) Extract(texts []string) []string {
	if len(texts) < 2 {
		return nil
	}

	docs := make([][]string, 0, len(texts))
	for _, text := range texts {
		docs = append(docs, ngrams(tokenize(text)))
	}

	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	n := len(docs)
	maxDF := int(maxDocRatio * float64(n))

	// Smoothed IDF, so terms present in every remaining document still score.
	idf := make(map[string]float64)
	for term, df := range docFreq {
		if df < minDocFreq || df > maxDF {
			continue
		}
		idf[term] = math.Log(float64(1+n)/float64(1+df)) + 1
	}

	if len(idf) == 0 {
		return nil
	}

	meanScore := make(map[string]float64)
	for _, doc := range docs {
		if len(doc) == 0 {
			continue
		}

		counts := make(map[string]int)
		for _, term := range doc {
			counts[term]++
		}

		for term, count := range counts {
			weight, ok := idf[term]
			if !ok {
				continue
			}
			tf := float64(count) / float64(len(doc))
			meanScore[term] += tf * weight / float64(n)
		}
	}

	terms := make([]string, 0, len(meanScore))
	for term := range meanScore {
		terms = append(terms, term)
	}

	sort.Slice(terms, func(i, j int) bool {
		if meanScore[terms[i]] != meanScore[terms[j]] {
			return meanScore[terms[i]] > meanScore[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > e.topN {
		terms = terms[:e.topN]
	}

	return terms
}

func tokenize(text string) []string {
	var tokens []string

	for _, word := range strings.Fields(strings.ToLower(text)) {
		// Links and user handles carry no theme signal.
		if strings.HasPrefix(word, "http") || strings.HasPrefix(word, "@") {
			continue
		}

		for _, field := range strings.FieldsFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '#'
		}) {
			token := strings.Trim(field, "'")
			if len(token) < 2 {
				continue
			}
			if stopwords[token] {
				continue
			}
			tokens = append(tokens, token)
		}
	}

	return tokens
}

func ngrams(tokens []string) []string {
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"all": true, "am": true, "an": true, "and": true, "any": true, "are": true,
	"as": true, "at": true, "be": true, "because": true, "been": true,
	"before": true, "being": true, "below": true, "between": true, "both": true,
	"but": true, "by": true, "can": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true,
	"hers": true, "him": true, "his": true, "how": true, "i": true, "if": true,
	"in": true, "into": true, "is": true, "it": true, "its": true, "just": true,
	"me": true, "more": true, "most": true, "my": true, "no": true, "nor": true,
	"not": true, "now": true, "of": true, "off": true, "on": true, "once": true,
	"only": true, "or": true, "other": true, "our": true, "out": true,
	"over": true, "own": true, "same": true, "she": true, "so": true,
	"some": true, "such": true, "than": true, "that": true, "the": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "those": true, "through": true, "to": true,
	"too": true, "under": true, "until": true, "up": true, "very": true,
	"was": true, "we": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "who": true, "whom": true,
	"why": true, "will": true, "with": true, "you": true, "your": true,
	"yours": true,
}
