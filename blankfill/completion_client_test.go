package blankfill

import (
	"context"
	"errors"
	"testing"

	"github.com/SaiNageswarS/doc-filler/errs"
	"github.com/SaiNageswarS/doc-filler/llm"
	"github.com/SaiNageswarS/doc-filler/ordered"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	ops    []string
	models []string
}

func (r *recordingReporter) RecordCall(op, model string) {
	r.ops = append(r.ops, op)
	r.models = append(r.models, model)
}

func TestIdentifyBlanks(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected []string
	}{
		{name: "blanks listed", response: `{"blanks": ["[Name]", "___________"]}`, expected: []string{"[Name]", "___________"}},
		{name: "missing key", response: `{"other": 1}`, expected: []string{}},
		{name: "empty list", response: `{"blanks": []}`, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testLLMClient{model: "gpt-4o-mini", responses: []string{tt.response}}
			reporter := &recordingReporter{}
			client := NewCompletionClient(mock, reporter)

			result, err := async.Await(client.IdentifyBlanks(context.Background(), "Name: [Name]"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, []string{OpIdentifyBlanks}, reporter.ops)
			assert.Equal(t, []string{"gpt-4o-mini"}, reporter.models)

			require.Len(t, mock.messages, 1)
			require.Len(t, mock.messages[0], 1)
			assert.Equal(t, "user", mock.messages[0][0].Role)
			assert.Contains(t, mock.messages[0][0].Content, "Name: [Name]")
		})
	}
}

func TestIdentifyBlanks_NonJSONIsUpstreamError(t *testing.T) {
	mock := &testLLMClient{model: "gpt-4o-mini", responses: []string{"I found [Name] in your document"}}
	client := NewCompletionClient(mock, nil)

	_, err := async.Await(client.IdentifyBlanks(context.Background(), "Name: [Name]"))
	require.Error(t, err)

	var upstream *errs.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, OpIdentifyBlanks, upstream.Op)
}

func TestIdentifyBlanks_TransportError(t *testing.T) {
	mock := &testLLMClient{model: "gpt-4o-mini", shouldError: true, errorMessage: "connection refused"}
	client := NewCompletionClient(mock, nil)

	_, err := async.Await(client.IdentifyBlanks(context.Background(), "[Name]"))
	require.Error(t, err)

	var upstream *errs.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFillValues(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected ordered.Map
	}{
		{
			name:     "keeps reply order",
			response: `{"filled_values": {"[Name]": "John Smith", "___________": "2024-03-15", "[Age]": 42}}`,
			expected: ordered.Map{{Key: "[Name]", Value: "John Smith"}, {Key: "___________", Value: "2024-03-15"}, {Key: "[Age]", Value: "42"}},
		},
		{
			name:     "missing key",
			response: `{"blanks": []}`,
			expected: ordered.Map{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testLLMClient{model: "gpt-4o-mini", responses: []string{tt.response}}
			reporter := &recordingReporter{}
			client := NewCompletionClient(mock, reporter)

			result, err := async.Await(client.FillValues(context.Background(), []string{"[Name]"}, "John Smith", "", llm.WithModel("gpt-4o")))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, []string{OpFillValues}, reporter.ops)
			assert.Equal(t, []string{"gpt-4o"}, reporter.models)
			assert.Equal(t, []string{"gpt-4o"}, mock.models)
		})
	}
}

func TestFillValues_NonJSONIsUpstreamError(t *testing.T) {
	mock := &testLLMClient{model: "gpt-4o-mini", responses: []string{"not json"}}
	client := NewCompletionClient(mock, nil)

	_, err := async.Await(client.FillValues(context.Background(), []string{"[Name]"}, "ctx", ""))
	require.Error(t, err)

	var upstream *errs.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, OpFillValues, upstream.Op)
}

func TestCallCounter(t *testing.T) {
	counter := &CallCounter{}
	mock := &testLLMClient{model: "gpt-4o-mini", responses: []string{`{"blanks": []}`, `{"filled_values": {}}`}}
	client := NewCompletionClient(mock, counter)

	_, err := async.Await(client.IdentifyBlanks(context.Background(), "[A]"))
	require.NoError(t, err)
	_, err = async.Await(client.FillValues(context.Background(), []string{"[A]"}, "", ""))
	require.NoError(t, err)

	assert.Equal(t, int64(2), counter.Count())
}
