package tests_test

import (
	"context"
	"sync"
)

type SentEmail struct {
	To      string
	Subject string
	Body    string
}

type MockTransport struct {
	lock sync.Mutex
	Sent []SentEmail
}

func (m *MockTransport) Send(_ context.Context, to, subject, htmlBody string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *MockTransport) SentTo(to string) []SentEmail {
	m.lock.Lock()
	defer m.lock.Unlock()

	var sent []SentEmail
	for _, e := range m.Sent {
		if e.To == to {
			sent = append(sent, e)
		}
	}
	return sent
}
