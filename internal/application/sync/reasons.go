package sync

import "regexp"

// missingAttributePatterns recognize the failure wordings, English and
// Turkish, that mean a required attribute was absent from the payload. The
// first capture group is the attribute name.
var missingAttributePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)missing\s+required\s+attribute[:\s]+(.+)`),
	regexp.MustCompile(`(?i)required\s+attribute\s+'?([^']+?)'?\s+is\s+missing`),
	regexp.MustCompile(`(?i)zorunlu\s+(?:kategori\s+)?[oö]zellik(?:ler)?[i]?\s+eksik[:\s]+(.+)`),
	regexp.MustCompile(`(?i)'?([^']+?)'?\s+[oö]zelli[gğ]i\s+zorunludur`),
}

// missingAttributeNames extracts the attribute names from failure reasons
// that match a recognized missing-attribute wording. Reasons that do not
// match contribute nothing. An empty result means the failure is not
// correctable by rebuilding the payload.
func missingAttributeNames(reasons []string) []string {
	var names []string
	for _, reason := range reasons {
		for _, pattern := range missingAttributePatterns {
			if m := pattern.FindStringSubmatch(reason); m != nil {
				names = append(names, trimReasonName(m[1]))
				break
			}
		}
	}
	return names
}

// allRecognized reports whether every failure reason matches a
// missing-attribute wording. A mix of recognized and unrecognized reasons
// is treated as unrecognized, since a retry could not fix the rest.
func allRecognized(reasons []string) bool {
	if len(reasons) == 0 {
		return false
	}
	for _, reason := range reasons {
		matched := false
		for _, pattern := range missingAttributePatterns {
			if pattern.MatchString(reason) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func trimReasonName(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if last == '.' || last == ' ' || last == '\t' {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}
