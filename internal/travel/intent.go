package travel

import "strings"

// Intent labels the conversational purpose of one utterance.
type Intent string

const (
	IntentDestinationInquiry Intent = "destination_inquiry"
	IntentItineraryPlanning  Intent = "itinerary_planning"
	IntentBudgetPlanning     Intent = "budget_planning"
	IntentAccommodation      Intent = "accommodation"
	IntentTransportation     Intent = "transportation"
	IntentDining             Intent = "dining"
	IntentRequirements       Intent = "requirements"
	IntentGeneralTravel      Intent = "general_travel"
	IntentGreeting           Intent = "greeting"
	IntentOther              Intent = "other"
)

// Intents lists every label in classifier-prompt order.
var Intents = []Intent{
	IntentDestinationInquiry,
	IntentItineraryPlanning,
	IntentBudgetPlanning,
	IntentAccommodation,
	IntentTransportation,
	IntentDining,
	IntentRequirements,
	IntentGeneralTravel,
	IntentGreeting,
	IntentOther,
}

// FollowUpIntents are the only intents that may receive follow-up questions.
var FollowUpIntents = []Intent{
	IntentDestinationInquiry,
	IntentItineraryPlanning,
	IntentBudgetPlanning,
}

// ParseIntent maps a raw label onto the closed set.
func ParseIntent(s string) (Intent, bool) {
	want := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, in := range Intents {
		if in == want {
			return in, true
		}
	}
	return "", false
}

// Valid reports whether i is exactly one of the known labels.
func (i Intent) Valid() bool {
	for _, in := range Intents {
		if in == i {
			return true
		}
	}
	return false
}

func (i Intent) wantsFollowUp() bool {
	for _, in := range FollowUpIntents {
		if in == i {
			return true
		}
	}
	return false
}
