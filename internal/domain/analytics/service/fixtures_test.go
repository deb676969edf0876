package service

import (
	"time"

	chatentity "github.com/vadim/supportbot/internal/domain/chat/entity"
)

const intentPrefix = "projects/demo/agent/intents/"

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func score(v float64) *float64 {
	return &v
}

func userMsg(ts time.Time, intent string) chatentity.Message {
	m := chatentity.Message{Text: "hi", Sender: chatentity.SenderUser, Timestamp: ts}
	if intent != "" {
		m.Intent = intentPrefix + intent
	}
	return m
}

func botMsg(ts time.Time) chatentity.Message {
	return chatentity.Message{Text: "hello", Sender: chatentity.SenderBot, Timestamp: ts}
}

func transcript(id string, msgs ...chatentity.Message) chatentity.Transcript {
	for i := range msgs {
		msgs[i].SessionID = id
	}
	return chatentity.Transcript{SessionID: id, Messages: msgs}
}
