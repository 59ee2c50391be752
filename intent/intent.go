// Package intent classifies customer utterances into a closed set of
// intent labels through a tiered cascade: rule patterns first, then a
// lightweight statistical model, then keyword frequency. Higher tiers are
// never overridden by lower ones.
package intent

// Label is a closed intent enumeration.
type Label string

const (
	Greeting              Label = "greeting"
	IdentityQuery         Label = "identity_query"
	WhatDoYouSell         Label = "what_do_you_sell"
	RequestRecommendation Label = "request_recommendation"
	InquiryPriceOrBuy     Label = "inquiry_price_or_buy"
	InquiryAvailability   Label = "inquiry_availability"
	InquiryPolicy         Label = "inquiry_policy"
	RefundRequest         Label = "refund_request"
	Unknown               Label = "unknown"
)

// Labels lists every known label except Unknown, in a stable order.
func Labels() []Label {
	return []Label{
		Greeting,
		IdentityQuery,
		WhatDoYouSell,
		RequestRecommendation,
		InquiryPriceOrBuy,
		InquiryAvailability,
		InquiryPolicy,
		RefundRequest,
	}
}

// NeedsCatalog reports whether resolving the label requires a catalog
// lookup.
func (l Label) NeedsCatalog() bool {
	return l == InquiryPriceOrBuy || l == InquiryAvailability
}

// Classifier is one tier of the cascade. ok is false when the tier has no
// opinion, letting the next tier try. A tier whose resources are missing
// must fail fast with ok=false instead of blocking.
type Classifier interface {
	Classify(text string) (label Label, confidence float32, ok bool)
}
