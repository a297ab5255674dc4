package travel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Contains(t, c.ClassifierPrompt(), `"key_entities"`)
	for _, in := range Intents {
		assert.Contains(t, c.ClassifierPrompt(), "- "+string(in)+":", "classifier prompt lists %s", in)
	}
	for _, in := range FollowUpIntents {
		assert.Len(t, c.FollowUp.Questions[in], 3, in)
	}
	assert.Equal(t, "🤔 **To help you better, I'd love to know:**", c.FollowUp.Header)
}

func TestSystemPrompt(t *testing.T) {
	c := DefaultCatalog()

	dining := c.SystemPrompt(IntentDining)
	assert.True(t, strings.HasPrefix(dining, "You are a culinary travel expert."))
	assert.True(t, strings.HasSuffix(dining, "ask specific follow-up questions."))
	assert.Contains(t, dining, "\n\nAlways be enthusiastic")

	general := c.SystemPrompt(IntentGeneralTravel)
	assert.Equal(t, general, c.SystemPrompt(IntentOther))
	assert.Equal(t, general, c.SystemPrompt(Intent("made_up")))
	assert.NotEqual(t, general, c.SystemPrompt(IntentGreeting))
}

func TestParseCatalog_Validation(t *testing.T) {
	valid := `
classifier: {system: "classify"}
generator:
  prompts: {general_travel: "help"}
followup:
  header: "h"
  questions:
    destination_inquiry: [a]
    itinerary_planning: [b]
    budget_planning: [c]
`
	c, err := ParseCatalog([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "help", c.SystemPrompt(IntentDining))

	cases := map[string]string{
		"missing classifier": strings.Replace(valid, `classifier: {system: "classify"}`, `classifier: {}`, 1),
		"missing general":    strings.Replace(valid, `general_travel: "help"`, `dining: "eat"`, 1),
		"unknown intent":     strings.Replace(valid, `{general_travel: "help"}`, `{general_travel: "help", shopping: "buy"}`, 1),
		"missing bank":       strings.Replace(valid, "    budget_planning: [c]\n", "", 1),
		"bank on wrong intent": strings.Replace(valid, "    budget_planning: [c]\n",
			"    budget_planning: [c]\n    dining: [d]\n", 1),
		"bad yaml": "classifier: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ClassifierPrompt())

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o600))
	fromFile, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, c.SystemPrompt(IntentBudgetPlanning), fromFile.SystemPrompt(IntentBudgetPlanning))

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseIntent(t *testing.T) {
	in, ok := ParseIntent("  Dining ")
	assert.True(t, ok)
	assert.Equal(t, IntentDining, in)

	_, ok = ParseIntent("shopping")
	assert.False(t, ok)

	assert.True(t, IntentOther.Valid())
	assert.False(t, Intent("Dining").Valid())
}
