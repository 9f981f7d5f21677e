package secret

// MemoryStore is an in-memory Store for tests and throwaway sessions.
type MemoryStore struct {
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) GetPassword(service, account string) (string, error) {
	p, ok := m.entries[service+"\x00"+account]
	if !ok {
		return "", ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) SetPassword(service, account, password string) error {
	m.entries[service+"\x00"+account] = password
	return nil
}
