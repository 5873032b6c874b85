package resolve

// keywordRule maps a set of normalized terms to a leaf category id. Every
// term must appear as a whole word in the search key for the rule to fire.
type keywordRule struct {
	terms      []string
	categoryID int
}

// keywordRules is consulted in declaration order; the first rule whose
// terms all match wins. More specific rules (two terms) come before
// single-term ones so "erkek tisort" never falls into the women's bucket.
var keywordRules = []keywordRule{
	{terms: []string{"erkek", "tisort"}, categoryID: 546},
	{terms: []string{"erkek", "gomlek"}, categoryID: 544},
	{terms: []string{"erkek", "pantolon"}, categoryID: 545},
	{terms: []string{"tisort"}, categoryID: 392},
	{terms: []string{"tshirt"}, categoryID: 392},
	{terms: []string{"t shirt"}, categoryID: 392},
	{terms: []string{"gomlek"}, categoryID: 389},
	{terms: []string{"pantolon"}, categoryID: 386},
	{terms: []string{"sort"}, categoryID: 386},
	{terms: []string{"elbise"}, categoryID: 387},
	{terms: []string{"ceket"}, categoryID: 385},
}

// matchKeyword returns the category id the keyword table assigns to the
// normalized search key, or 0 when no rule fires.
func matchKeyword(normalizedKey string) int {
	for _, rule := range keywordRules {
		matched := true
		for _, term := range rule.terms {
			if !containsWord(normalizedKey, term) {
				matched = false
				break
			}
		}
		if matched {
			return rule.categoryID
		}
	}
	return 0
}
