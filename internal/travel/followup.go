package travel

import "strings"

// FollowUpAugmenter appends clarifying questions to high-confidence replies
// for the intents in FollowUpIntents.
type FollowUpAugmenter struct {
	header       string
	questions    map[Intent][]string
	threshold    float64
	maxQuestions int
}

func NewFollowUpAugmenter(catalog *Catalog, threshold float64, maxQuestions int) *FollowUpAugmenter {
	return &FollowUpAugmenter{
		header:       catalog.FollowUp.Header,
		questions:    catalog.FollowUp.Questions,
		threshold:    threshold,
		maxQuestions: maxQuestions,
	}
}

// ShouldAugment is the guard on the generate -> augment edge. The threshold
// comparison is strict.
func (a *FollowUpAugmenter) ShouldAugment(intent Intent, confidence float64) bool {
	return intent.wantsFollowUp() && confidence > a.threshold
}

// Augment returns response with the header and the first maxQuestions
// questions of the intent's bank appended, one bullet per line. Intents
// without a bank get response back unchanged.
func (a *FollowUpAugmenter) Augment(response string, intent Intent) string {
	qs := a.questions[intent]
	if len(qs) == 0 || a.maxQuestions <= 0 {
		return response
	}
	if len(qs) > a.maxQuestions {
		qs = qs[:a.maxQuestions]
	}
	var b strings.Builder
	b.WriteString(response)
	b.WriteString("\n\n")
	b.WriteString(a.header)
	for _, q := range qs {
		b.WriteString("\n• ")
		b.WriteString(q)
	}
	return b.String()
}
