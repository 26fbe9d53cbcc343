package agent

import (
	"context"
	"strings"
)

// MockClient provides canned story responses for tests, matching the
// Complete signature of the hosted client.
type MockClient struct {
	Response string
	Err      error
	Calls    int
}

const mockStory = "Había una vez un zorro que vivía al borde del bosque.\n\n" +
	"Una mañana encontró un mapa enterrado bajo la nieve y decidió seguirlo, " +
	"aunque el camino cruzaba el río helado y nadie lo acompañaba.\n\n" +
	"Al final del mapa no había un tesoro sino un amigo esperando, y el zorro " +
	"entendió que eso era mejor."

// NewMockClient creates a mock that returns a fixed three-part story.
func NewMockClient() *MockClient {
	return &MockClient{Response: mockStory}
}

// Complete returns the canned response, echoing a prompt keyword when the
// prompt asks for something specific so tests can assert pass-through.
func (m *MockClient) Complete(ctx context.Context, systemPrompt, userPrompt string, p Params) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if strings.Contains(userPrompt, "dragón") {
		return strings.Replace(m.Response, "zorro", "dragón", -1), nil
	}
	return m.Response, nil
}

// Configured always reports true for the mock.
func (m *MockClient) Configured() bool { return true }
