package dispatchers

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	// Initialize first column
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}

	// Initialize first row
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	// Fill in the rest of the matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// closeMatchRatio is the similarity at which a name counts as a close match.
const closeMatchRatio = 0.8

// DefaultSuggestionsCount caps how many names Suggest returns.
const DefaultSuggestionsCount = 3

// similarity returns the difflib ratio of the two names, compared per character.
func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(strings.ToLower(a), ""), strings.Split(strings.ToLower(b), ""))
	return m.Ratio()
}

type suggestion struct {
	name     string
	distance int
}

// Suggest returns up to maxResults names close to input: names whose
// similarity is at least closeMatchRatio, or that input is a prefix of.
// Results are ordered by edit distance, then name.
func Suggest(input string, names []string, maxResults int) []string {
	if input == "" {
		return nil
	}
	lower := strings.ToLower(input)

	var found []suggestion
	for _, name := range names {
		if name == input {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), lower) && similarity(input, name) < closeMatchRatio {
			continue
		}
		found = append(found, suggestion{name: name, distance: levenshtein(input, name)})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].name < found[j].name
	})

	if maxResults > 0 && len(found) > maxResults {
		found = found[:maxResults]
	}

	result := make([]string, len(found))
	for i, s := range found {
		result[i] = s.name
	}
	return result
}

// Suggest returns registered command names close to input.
func (r *Registry) Suggest(input string) []string {
	return Suggest(input, r.Commands(), DefaultSuggestionsCount)
}

// SuggestSubcommand returns subcommand names of name close to input.
func (r *Registry) SuggestSubcommand(name, input string) []string {
	d, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	r.mu.RLock()
	subs := make([]string, 0, len(d.Subcommands))
	for sub := range d.Subcommands {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()
	return Suggest(input, subs, DefaultSuggestionsCount)
}
