package sentiment

import (
	"context"
	"strings"
)

// polarity of individual words, in [-1, 1]
var polarity = map[string]float64{
	"amazing":     0.6,
	"awesome":     1.0,
	"beautiful":   0.85,
	"best":        1.0,
	"better":      0.5,
	"boom":        0.4,
	"bullish":     0.6,
	"excellent":   1.0,
	"exciting":    0.3,
	"fantastic":   0.4,
	"free":        0.4,
	"fun":         0.3,
	"gain":        0.4,
	"gains":       0.4,
	"good":        0.7,
	"great":       0.8,
	"growth":      0.3,
	"happy":       0.8,
	"hope":        0.3,
	"innovative":  0.5,
	"love":        0.5,
	"nice":        0.6,
	"perfect":     1.0,
	"positive":    0.23,
	"profit":      0.4,
	"rally":       0.4,
	"rising":      0.3,
	"safe":        0.5,
	"secure":      0.4,
	"smart":       0.21,
	"strong":      0.43,
	"success":     0.5,
	"surge":       0.5,
	"trust":       0.4,
	"win":         0.8,
	"wonderful":   1.0,
	"angry":       -0.5,
	"awful":       -1.0,
	"bad":         -0.7,
	"ban":         -0.4,
	"banned":      -0.5,
	"bearish":     -0.6,
	"boring":      -1.0,
	"broken":      -0.4,
	"bubble":      -0.3,
	"crash":       -0.6,
	"crisis":      -0.6,
	"dead":        -0.2,
	"decline":     -0.3,
	"drop":        -0.2,
	"dump":        -0.4,
	"fail":        -0.5,
	"failure":     -0.32,
	"fear":        -0.5,
	"fraud":       -0.7,
	"hack":        -0.5,
	"hacked":      -0.6,
	"hate":        -0.8,
	"lawsuit":     -0.4,
	"loss":        -0.4,
	"losses":      -0.4,
	"negative":    -0.3,
	"overhyped":   -0.5,
	"panic":       -0.6,
	"poor":        -0.4,
	"risky":       -0.4,
	"sad":         -0.5,
	"scam":        -0.8,
	"terrible":    -1.0,
	"ugly":        -0.7,
	"useless":     -0.5,
	"volatile":    -0.3,
	"weak":        -0.375,
	"worse":       -0.4,
	"worst":       -1.0,
	"wrong":       -0.5,
}

// intensifiers scale the polarity of the word that follows
var intensifiers = map[string]float64{
	"barely":     0.4,
	"extremely":  1.5,
	"highly":     1.3,
	"incredibly": 1.4,
	"really":     1.2,
	"slightly":   0.5,
	"so":         1.2,
	"somewhat":   0.7,
	"super":      1.3,
	"totally":    1.2,
	"very":       1.3,
}

// negators flip and dampen the next scored word. Apostrophes are already
// stripped by normalization, hence "dont" rather than "don't".
var negators = map[string]struct{}{
	"arent":   {},
	"cant":    {},
	"doesnt":  {},
	"dont":    {},
	"hardly":  {},
	"isnt":    {},
	"never":   {},
	"no":      {},
	"nor":     {},
	"not":     {},
	"wasnt":   {},
	"without": {},
	"wont":    {},
}

const negationFactor = -0.5

// Lexicon scores normalized text by averaging word polarities
type Lexicon struct{}

// NewLexicon returns the lexical analyzer
func NewLexicon() *Lexicon {
	return &Lexicon{}
}

// Score implements sentiment.Analyzer. Text with no lexicon words scores 0.
func (l *Lexicon) Score(_ context.Context, text string) (float64, error) {
	words := strings.Fields(text)

	var sum float64
	var n int
	for i, w := range words {
		p, ok := polarity[w]
		if !ok {
			continue
		}

		// look back over an optional intensifier to find a negator
		j := i - 1
		if j >= 0 {
			if m, ok := intensifiers[words[j]]; ok {
				p *= m
				j--
			}
		}
		if j >= 0 {
			if _, ok := negators[words[j]]; ok {
				p *= negationFactor
			}
		}

		sum += clamp(p)
		n++
	}

	if n == 0 {
		return 0, nil
	}
	return clamp(sum / float64(n)), nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
