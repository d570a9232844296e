package models

import (
	"encoding/json"
	"fmt"
)

// RawMessageBuilder assembles queue envelopes with JSON bodies.
type RawMessageBuilder struct {
	msg     RawMessage
	payload map[string]interface{}
}

func NewRawMessageBuilder() *RawMessageBuilder {
	return &RawMessageBuilder{
		payload: make(map[string]interface{}),
	}
}

func (b *RawMessageBuilder) WithID(id string) *RawMessageBuilder {
	b.msg.ID = id
	return b
}

func (b *RawMessageBuilder) WithReceiptHandle(handle string) *RawMessageBuilder {
	b.msg.ReceiptHandle = handle
	return b
}

func (b *RawMessageBuilder) WithField(key string, value interface{}) *RawMessageBuilder {
	b.payload[key] = value
	return b
}

func (b *RawMessageBuilder) WithPayload(payload map[string]interface{}) *RawMessageBuilder {
	b.payload = payload
	return b
}

// WithRawBody sets the body verbatim and ignores any fields.
func (b *RawMessageBuilder) WithRawBody(body string) *RawMessageBuilder {
	b.msg.Body = body
	b.payload = nil
	return b
}

func (b *RawMessageBuilder) Build() (RawMessage, error) {
	if b.payload == nil {
		return b.msg, nil
	}
	body, err := json.Marshal(b.payload)
	if err != nil {
		return RawMessage{}, fmt.Errorf("failed to marshal message body: %w", err)
	}
	msg := b.msg
	msg.Body = string(body)
	return msg, nil
}

// MustBuild is Build for fixtures.
func (b *RawMessageBuilder) MustBuild() RawMessage {
	msg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return msg
}
