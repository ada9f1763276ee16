package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/chatfeedback/internal/domain"
)

func TestParseCall(t *testing.T) {
	cases := []struct {
		name    string
		fn      string
		args    string
		want    domain.StructuredCall
		wantErr bool
	}{
		{
			name: "feedback with all fields",
			fn:   domain.CallCollectFeedback,
			args: `{"review":" loved it ","rating":5,"is_feedback":true}`,
			want: domain.FeedbackCall{Review: "loved it", Rating: 5, IsFeedback: true},
		},
		{
			name: "feedback with only the required field",
			fn:   domain.CallCollectFeedback,
			args: `{"is_feedback":true}`,
			want: domain.FeedbackCall{IsFeedback: true},
		},
		{
			name: "feedback rating out of range is no rating",
			fn:   domain.CallCollectFeedback,
			args: `{"rating":9,"is_feedback":true}`,
			want: domain.FeedbackCall{Rating: domain.NoRating, IsFeedback: true},
		},
		{
			name: "feedback fractional rating is no rating",
			fn:   domain.CallCollectFeedback,
			args: `{"rating":3.5,"is_feedback":true}`,
			want: domain.FeedbackCall{Rating: domain.NoRating, IsFeedback: true},
		},
		{
			name: "feedback numeric string rating",
			fn:   domain.CallCollectFeedback,
			args: `{"rating":"4","is_feedback":true}`,
			want: domain.FeedbackCall{Rating: 4, IsFeedback: true},
		},
		{
			name:    "feedback missing is_feedback",
			fn:      domain.CallCollectFeedback,
			args:    `{"review":"ok","rating":4}`,
			wantErr: true,
		},
		{
			name:    "feedback is_feedback not boolean",
			fn:      domain.CallCollectFeedback,
			args:    `{"is_feedback":"yes"}`,
			wantErr: true,
		},
		{
			name: "exit intent",
			fn:   domain.CallDetectExitIntent,
			args: `{"is_exit_intent": true, "confidence": 0.9}`,
			want: domain.ExitIntentCall{IsExitIntent: true, Confidence: 0.9},
		},
		{
			name: "exit intent confidence out of range is dropped",
			fn:   domain.CallDetectExitIntent,
			args: `{"is_exit_intent": false, "confidence": 7}`,
			want: domain.ExitIntentCall{IsExitIntent: false},
		},
		{
			name:    "exit intent null",
			fn:      domain.CallDetectExitIntent,
			args:    `{"is_exit_intent": null}`,
			wantErr: true,
		},
		{
			name:    "unparsable arguments",
			fn:      domain.CallDetectExitIntent,
			args:    `{"is_exit_intent": tru`,
			wantErr: true,
		},
		{
			name:    "array arguments",
			fn:      domain.CallDetectExitIntent,
			args:    `[true]`,
			wantErr: true,
		},
		{
			name:    "empty arguments",
			fn:      domain.CallCollectFeedback,
			args:    ``,
			wantErr: true,
		},
		{
			name:    "unknown function",
			fn:      "book_flight",
			args:    `{}`,
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCall(tc.fn, tc.args)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedCall)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCalls_DropsMalformed(t *testing.T) {
	good := toolCall(domain.CallDetectExitIntent, `{"is_exit_intent":true}`)
	bad := toolCall(domain.CallCollectFeedback, `not json`)

	calls := ParseCalls([]ToolCall{bad, good})
	require.Len(t, calls, 1)
	assert.Equal(t, domain.ExitIntentCall{IsExitIntent: true}, calls[0])
}
