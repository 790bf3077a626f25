package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
)

// Manager представляет центральный менеджер для всех WebSocket соединений
// и доставляет события сделок их участникам
type Manager struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]*Client
	userClients map[uuid.UUID]map[uuid.UUID]struct{} // userID -> clientIDs
	log         logrus.FieldLogger
}

var _ lifecycle.Notifier = (*Manager)(nil)

// NewManager создает новый экземпляр Manager
func NewManager(log logrus.FieldLogger) *Manager {
	return &Manager{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		log:         log,
	}
}

// AddClient регистрирует нового клиента
func (m *Manager) AddClient(client *Client) {
	m.mu.Lock()
	m.clients[client.ID] = client
	if _, exists := m.userClients[client.UserID]; !exists {
		m.userClients[client.UserID] = make(map[uuid.UUID]struct{})
	}
	m.userClients[client.UserID][client.ID] = struct{}{}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": client.UserID}).Debug("WebSocket клиент подключен")
}

// RemoveClient удаляет клиента
func (m *Manager) RemoveClient(clientID uuid.UUID) {
	m.mu.Lock()
	client, exists := m.clients[clientID]
	if !exists {
		m.mu.Unlock()
		return
	}
	delete(m.clients, clientID)
	if clients, ok := m.userClients[client.UserID]; ok {
		delete(clients, clientID)
		// Последнее соединение пользователя
		if len(clients) == 0 {
			delete(m.userClients, client.UserID)
		}
	}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"client_id": clientID, "user_id": client.UserID}).Debug("WebSocket клиент отключен")
}

// Connected сообщает, есть ли у пользователя открытые соединения
func (m *Manager) Connected(userID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.userClients[userID]) > 0
}

// Notify отправляет событие сделки всем соединениям получателей
func (m *Manager) Notify(event lifecycle.TradeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		m.log.WithError(err).Error("Ошибка сериализации события")
		return
	}

	for _, userID := range event.Recipients {
		m.SendToUser(userID, payload)
	}
}

// SendToUser отправляет сообщение всем соединениям конкретного пользователя.
// Не блокирует: медленный клиент с заполненной очередью отключается.
func (m *Manager) SendToUser(userID uuid.UUID, payload []byte) {
	m.mu.RLock()
	var targets []*Client
	for clientID := range m.userClients[userID] {
		if client, ok := m.clients[clientID]; ok {
			targets = append(targets, client)
		}
	}
	m.mu.RUnlock()

	// Пользователь не онлайн, событие доступно через API
	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			m.log.WithField("client_id", c.ID).Warn("Очередь отправки переполнена, закрываем соединение")
			c.conn.Close()
			m.RemoveClient(c.ID)
		}
	}
}

// Shutdown корректно завершает работу менеджера WebSocket
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		client.conn.Close()
	}
	m.clients = make(map[uuid.UUID]*Client)
	m.userClients = make(map[uuid.UUID]map[uuid.UUID]struct{})
}
