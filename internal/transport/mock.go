package transport

import "crypto/tls"

// MockTransport is a scriptable Transport for tests. Nil funcs succeed.
type MockTransport struct {
	HelloFunc    func(localName string) error
	StartTLSFunc func(cfg *tls.Config) error
	AuthFunc     func(user, password string) error
	SendMailFunc func(from string, recipients []string, msg []byte) error
	QuitFunc     func() error
}

func (m *MockTransport) Hello(localName string) error {
	if m.HelloFunc != nil {
		return m.HelloFunc(localName)
	}
	return nil
}

func (m *MockTransport) StartTLS(cfg *tls.Config) error {
	if m.StartTLSFunc != nil {
		return m.StartTLSFunc(cfg)
	}
	return nil
}

func (m *MockTransport) Auth(user, password string) error {
	if m.AuthFunc != nil {
		return m.AuthFunc(user, password)
	}
	return nil
}

func (m *MockTransport) SendMail(from string, recipients []string, msg []byte) error {
	if m.SendMailFunc != nil {
		return m.SendMailFunc(from, recipients, msg)
	}
	return nil
}

func (m *MockTransport) Quit() error {
	if m.QuitFunc != nil {
		return m.QuitFunc()
	}
	return nil
}

// MockDialer hands out transports from a func and counts dials.
type MockDialer struct {
	DialFunc func() (Transport, error)
	Dials    int
}

func (m *MockDialer) Dial() (Transport, error) {
	m.Dials++
	if m.DialFunc != nil {
		return m.DialFunc()
	}
	return &MockTransport{}, nil
}
