package recommend

import (
	"fmt"
	"strings"

	"github.com/coursewise/coursewise/pkg/models"
)

// MaxCatalogEntries bounds how many courses are shown to the model.
const MaxCatalogEntries = 10

// CompilePrompt renders the recommendation instruction for userPrompt from
// the first MaxCatalogEntries courses of catalog, in the order given.
// The user prompt is embedded verbatim.
func CompilePrompt(userPrompt string, catalog []models.CatalogEntry) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}
	if len(catalog) == 0 {
		return "", fmt.Errorf("%w: no courses available for recommendations", ErrInvalidInput)
	}
	if len(catalog) > MaxCatalogEntries {
		catalog = catalog[:MaxCatalogEntries]
	}

	var b strings.Builder
	b.WriteString("You are a course recommendation assistant for an online learning platform.\n\n")
	fmt.Fprintf(&b, "User's request: \"%s\"\n\n", userPrompt)
	b.WriteString("Available courses:\n")
	for i, c := range catalog {
		fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, c.Title, c.Level, c.Category)
	}
	b.WriteString(`
Recommend the top 3 courses from the list above that best match the user's goals.
Use course titles exactly as listed. Keep each reason under 20 words and the explanation to one sentence.

Return ONLY a JSON object with this exact structure (no extra text):
{"recommendations":[{"courseTitle":"Course Name","reason":"Why this course fits"}],"explanation":"One sentence on the overall strategy"}`)

	return b.String(), nil
}
