package resolve

// maxSynonyms caps the expansion so the semantic tier embeds a bounded
// number of texts per resolution.
const maxSynonyms = 5

// StaticSynonyms is the default synonym source: a small table of Turkish
// garment terms and their common alternatives. The table is ordered so
// expansion stays deterministic when the cap truncates it.
type StaticSynonyms struct{}

var synonymTable = []struct {
	word string
	alts []string
}{
	{"tisort", []string{"t shirt", "tshirt", "bisiklet yaka"}},
	{"gomlek", []string{"shirt", "uzun kollu gomlek"}},
	{"pantolon", []string{"pants", "chino", "kumas pantolon"}},
	{"sort", []string{"sort etek", "bermuda"}},
	{"elbise", []string{"dress", "gunluk elbise"}},
	{"ceket", []string{"jacket", "blazer", "mont"}},
	{"kazak", []string{"sweater", "triko"}},
	{"etek", []string{"skirt"}},
	{"esofman", []string{"esofman alti", "jogger"}},
}

// Synonyms returns alternative phrasings for the normalized words of the
// key, capped at maxSynonyms. The key itself is not included.
func (StaticSynonyms) Synonyms(key string) []string {
	normalized := Normalize(key)
	var out []string
	for _, entry := range synonymTable {
		if !containsWord(normalized, entry.word) {
			continue
		}
		for _, alt := range entry.alts {
			if len(out) == maxSynonyms {
				return out
			}
			out = append(out, alt)
		}
	}
	return out
}
