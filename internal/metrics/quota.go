package metrics

// MessageRecorded counts a chat message against the source it was debited from.
func MessageRecorded(source string, tokens int) {
	ChatMessagesTotal.WithLabelValues(source).Inc()
	if tokens > 0 {
		AITokensTotal.Add(float64(tokens))
	}
}

// QuotaDenied counts a refused chat request.
func QuotaDenied(reason string) {
	QuotaDenialsTotal.WithLabelValues(reason).Inc()
}

// AICall counts a provider call by outcome ("ok" or "error").
func AICall(status string) {
	AICallsTotal.WithLabelValues(status).Inc()
}

// SubscriptionCreated counts a purchased bundle.
func SubscriptionCreated(tier, cycle string) {
	SubscriptionsCreatedTotal.WithLabelValues(tier, cycle).Inc()
}

// RenewalProcessed counts one renewal attempt.
func RenewalProcessed(outcome string) {
	SubscriptionRenewalsTotal.WithLabelValues(outcome).Inc()
}

// UsageReset counts reset or created usage rows.
func UsageReset(n int) {
	if n > 0 {
		UsageResetsTotal.Add(float64(n))
	}
}
