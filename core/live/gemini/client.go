// Package gemini implements the live stream contract over the Gemini Live
// (BidiGenerateContent) websocket protocol.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/live"
	"github.com/voxcal/voxcal-core/core/tools"
)

const (
	defaultModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	defaultVoice = "Zephyr"

	liveHost = "generativelanguage.googleapis.com"
	livePath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
)

// messageBuffer sizes the inbound channel so short routing stalls do not
// block the websocket read loop.
const messageBuffer = 32

type Client struct {
	apiKey string
	model  string
	voice  string
}

type ClientOption func(*Client)

// WithModel overrides the default live model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithVoice overrides the default prebuilt voice.
func WithVoice(voice string) ClientOption {
	return func(c *Client) { c.voice = voice }
}

// WithAPIKey sets the API key explicitly instead of reading GEMINI_API_KEY.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{model: defaultModel, voice: defaultVoice}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
		if !ok {
			return nil, fmt.Errorf("gemini api key not found")
		}
		client.apiKey = apiKey
	}

	return client, nil
}

// Connect dials the live endpoint, transmits the one-time setup (model,
// audio response modality, voice, system instruction, tool declarations),
// and waits for the backend's setup acknowledgement before returning.
//
// The returned stream delivers a KindOpened message first, then wire
// traffic, then a terminal KindClosed message.
func (c *Client) Connect(ctx context.Context, setup live.Setup) (live.Stream, error) {
	ctx, span := tracer.Start(ctx, "connect live stream")
	defer span.End()

	urlValues := url.Values{}
	urlValues.Set("key", c.apiKey)

	conn, _, err := websocket.DefaultDialer.DialContext(
		ctx,
		(&url.URL{Scheme: "wss", Host: liveHost, Path: livePath, RawQuery: urlValues.Encode()}).String(),
		http.Header{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to gemini: %w", err)
	}

	stream := &liveStream{
		conn:     conn,
		messages: make(chan live.Message, messageBuffer),
	}

	if err := stream.sendWebsocketMessage(setupMessage{Setup: setupPayload{
		Model: "models/" + c.model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.voice},
				},
			},
		},
		SystemInstruction: &content{Parts: []part{{Text: setup.SystemInstruction}}},
		Tools:             declarationsPayload(setup.Tools),
	}}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send setup message: %w", err)
	}

	if err := stream.awaitSetupComplete(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	stream.messages <- live.Message{Kind: live.KindOpened}
	go stream.processIncomingMessages()

	return stream, nil
}

func declarationsPayload(declarations []tools.Declaration) []toolPayload {
	if len(declarations) == 0 {
		return nil
	}

	functionDeclarations := make([]functionDeclaration, 0, len(declarations))
	for _, declaration := range declarations {
		schema := parameterSchema{Type: "OBJECT", Required: declaration.Required}
		if len(declaration.Parameters) > 0 {
			schema.Properties = make(map[string]propertySchema, len(declaration.Parameters))
			for name, parameter := range declaration.Parameters {
				schema.Properties[name] = propertySchema{
					Type:        strings.ToUpper(parameter.Type),
					Description: parameter.Description,
				}
			}
		}

		functionDeclarations = append(functionDeclarations, functionDeclaration{
			Name:        declaration.Name,
			Description: declaration.Description,
			Parameters:  schema,
		})
	}

	return []toolPayload{{FunctionDeclarations: functionDeclarations}}
}

type liveStream struct {
	conn *websocket.Conn
	mu   sync.Mutex

	messages  chan live.Message
	closeOnce sync.Once
	closed    bool
}

func (s *liveStream) Messages() <-chan live.Message {
	return s.messages
}

func (s *liveStream) awaitSetupComplete() error {
	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("stream closed during handshake: %w", err)
	}

	var msg serverMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to parse handshake response: %w", err)
	}
	if msg.SetupComplete == nil {
		return fmt.Errorf("backend did not acknowledge setup")
	}

	return nil
}

func (s *liveStream) processIncomingMessages() {
	defer close(s.messages)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.messages <- live.Message{Kind: live.KindClosed}
			} else {
				s.mu.Lock()
				closed := s.closed
				s.mu.Unlock()
				if closed {
					s.messages <- live.Message{Kind: live.KindClosed}
				} else {
					s.messages <- live.Message{Kind: live.KindClosed, Err: fmt.Errorf("stream read failed: %w", err)}
				}
			}
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Warn("dropping unparseable live frame", "error", err)
			continue
		}

		for _, translated := range translateServerMessage(msg) {
			s.messages <- translated
		}
	}
}

// translateServerMessage flattens one wire frame into routing messages.
// A single frame can carry several audio parts plus control flags; order is
// preserved so playback stays in arrival order.
func translateServerMessage(msg serverMessage) []live.Message {
	var messages []live.Message

	if msg.ServerContent != nil {
		if msg.ServerContent.ModelTurn != nil {
			for _, turnPart := range msg.ServerContent.ModelTurn.Parts {
				if turnPart.InlineData == nil || turnPart.InlineData.Data == "" {
					continue
				}
				messages = append(messages, live.Message{Kind: live.KindAudio, Audio: turnPart.InlineData.Data})
			}
		}
		if msg.ServerContent.Interrupted {
			messages = append(messages, live.Message{Kind: live.KindInterrupted})
		}
		if msg.ServerContent.TurnComplete {
			messages = append(messages, live.Message{Kind: live.KindTurnComplete})
		}
	}

	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		calls := make([]live.FunctionCall, 0, len(msg.ToolCall.FunctionCalls))
		for _, call := range msg.ToolCall.FunctionCalls {
			args := map[string]any{}
			if len(call.Args) > 0 {
				if err := json.Unmarshal(call.Args, &args); err != nil {
					logger.Warn("dropping unparseable tool call arguments", "call_id", call.ID, "error", err)
					args = map[string]any{}
				}
			}
			calls = append(calls, live.FunctionCall{ID: call.ID, Name: call.Name, Args: args})
		}
		messages = append(messages, live.Message{Kind: live.KindToolCall, Calls: calls})
	}

	if msg.GoAway != nil {
		logger.Info("backend requested disconnect", "time_left", msg.GoAway.TimeLeft)
	}

	return messages
}

func (s *liveStream) SendAudio(data string) error {
	return s.sendWebsocketMessage(realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []inlineData{{MimeType: audio.CaptureEncoding().MimeType(), Data: data}},
		},
	})
}

func (s *liveStream) SendToolResponse(responses ...live.FunctionResponse) error {
	if len(responses) == 0 {
		return nil
	}

	functionResponses := make([]functionResponse, 0, len(responses))
	for _, response := range responses {
		functionResponses = append(functionResponses, functionResponse{
			ID:       response.ID,
			Name:     response.Name,
			Response: response.Response,
		})
	}

	return s.sendWebsocketMessage(toolResponseMessage{
		ToolResponse: toolResponse{FunctionResponses: functionResponses},
	})
}

func (s *liveStream) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		_ = s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		s.mu.Unlock()

		closeErr = s.conn.Close()
	})
	return closeErr
}

func (s *liveStream) sendWebsocketMessage(msg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("websocket connection closed")
	}

	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
