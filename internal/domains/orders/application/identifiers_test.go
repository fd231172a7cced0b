package application

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifiers_Formats(t *testing.T) {
	ids := NewIdentifiers()

	require.Regexp(t, regexp.MustCompile(`^CMD-[0-9A-HJKMNP-TV-Z]{26}$`), ids.OrderNumber())
	require.Regexp(t, regexp.MustCompile(`^PAY-[0-9A-HJKMNP-TV-Z]{26}$`), ids.PaymentReference())
	require.Regexp(t, regexp.MustCompile(`^TRK-[0-9A-F]{32}$`), ids.TrackingNumber())
	require.Len(t, ids.EventID(), 36)
}

func TestIdentifiers_TrackingNumbersDoNotRepeat(t *testing.T) {
	ids := NewIdentifiers()
	seen := make(map[string]struct{}, 200000)
	for range 200000 {
		tracking := ids.TrackingNumber()
		_, dup := seen[tracking]
		require.False(t, dup, "tracking number %s issued twice", tracking)
		seen[tracking] = struct{}{}
	}
}

func TestIdentifiers_OrderNumbersSortByIssueTime(t *testing.T) {
	ids := NewIdentifiers()
	prev := ids.OrderNumber()
	for range 1000 {
		next := ids.OrderNumber()
		require.Negative(t, strings.Compare(prev, next))
		prev = next
	}
}
