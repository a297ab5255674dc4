package travel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const destinationBlock = "\n\n🤔 **To help you better, I'd love to know:**" +
	"\n• What's your budget range for this trip?" +
	"\n• How many days are you planning to travel?"

func TestShouldAugment(t *testing.T) {
	a := NewFollowUpAugmenter(DefaultCatalog(), DefaultFollowUpThreshold, DefaultFollowUpMaxQuestions)

	tests := []struct {
		intent     Intent
		confidence float64
		want       bool
	}{
		{IntentDestinationInquiry, 0.8, true},
		{IntentItineraryPlanning, 0.71, true},
		{IntentBudgetPlanning, 1.0, true},
		{IntentDestinationInquiry, 0.6, false},
		{IntentDestinationInquiry, 0.7, false},
		{IntentDining, 0.99, false},
		{IntentGeneralTravel, 0.9, false},
		{IntentOther, 0.9, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.ShouldAugment(tt.intent, tt.confidence), "%s @ %v", tt.intent, tt.confidence)
	}
}

func TestAugment(t *testing.T) {
	a := NewFollowUpAugmenter(DefaultCatalog(), DefaultFollowUpThreshold, DefaultFollowUpMaxQuestions)

	got := a.Augment("Japan is wonderful.", IntentDestinationInquiry)
	assert.Equal(t, "Japan is wonderful."+destinationBlock, got)
	assert.NotContains(t, got, "What type of activities")

	budget := a.Augment("", IntentBudgetPlanning)
	assert.Equal(t, 2, strings.Count(budget, "\n• "))
	assert.Contains(t, budget, "What's your total budget range?")

	assert.Equal(t, "unchanged", a.Augment("unchanged", IntentDining))
}

func TestAugment_RespectsCap(t *testing.T) {
	three := NewFollowUpAugmenter(DefaultCatalog(), DefaultFollowUpThreshold, 5)
	assert.Equal(t, 3, strings.Count(three.Augment("r", IntentItineraryPlanning), "\n• "))

	one := NewFollowUpAugmenter(DefaultCatalog(), DefaultFollowUpThreshold, 1)
	assert.Equal(t, 1, strings.Count(one.Augment("r", IntentItineraryPlanning), "\n• "))
}
